// ABOUTME: Tests for the session store
// ABOUTME: Verifies single-creation guarantee, ordering, and clear semantics

package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_IsIdempotent(t *testing.T) {
	s := NewStore(nil)

	first := s.GetOrCreate("s1")
	second := s.GetOrCreate("s1")
	require.Same(t, first, second)
}

func TestGetOrCreate_ConcurrentCallersShareOneTranscript(t *testing.T) {
	s := NewStore(nil)

	const n = 32
	results := make([]*Transcript, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.Same(t, results[0], results[i])
	}
}

func TestAppend_PreservesInsertionOrder(t *testing.T) {
	s := NewStore(nil)

	for i := 0; i < 5; i++ {
		s.Append("s1", NewTurn(RoleUser, fmt.Sprintf("message %d", i)))
	}

	turns := s.Get("s1")
	require.Len(t, turns, 5)
	for i, turn := range turns {
		assert.Equal(t, fmt.Sprintf("message %d", i), turn.Content)
	}
}

func TestGet_DoesNotCreateSession(t *testing.T) {
	s := NewStore(nil)

	assert.Nil(t, s.Get("missing"))

	// A later GetOrCreate still starts empty: Get must not have created it
	// with partial state.
	tr := s.GetOrCreate("missing")
	assert.Zero(t, tr.Len())
}

func TestClear_DiscardsTranscript(t *testing.T) {
	s := NewStore(nil)
	s.Append("s1", NewTurn(RoleUser, "hello"))

	s.Clear("s1")
	assert.Nil(t, s.Get("s1"))

	// Idempotent: clearing again (or clearing a session that never
	// existed) is not an error.
	s.Clear("s1")
	s.Clear("never-existed")
}

func TestTurns_ReturnsCopy(t *testing.T) {
	s := NewStore(nil)
	s.Append("s1", NewTurn(RoleUser, "hello"))

	turns := s.Get("s1")
	turns[0].Content = "mutated"

	assert.Equal(t, "hello", s.Get("s1")[0].Content)
}
