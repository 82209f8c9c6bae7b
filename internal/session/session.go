// ABOUTME: In-memory session store holding per-session ordered conversation transcripts
// ABOUTME: Creation is atomic check-and-insert; transcripts live for the process lifetime

package session

import (
	"log/slog"
	"sync"
	"time"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation transcript. Immutable once created.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// NewTurn creates a turn stamped with the current UTC time.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// Transcript is the ordered sequence of turns for one session.
// Appends preserve insertion order; the order is never rewritten.
type Transcript struct {
	mu    sync.Mutex
	turns []Turn
}

// Append adds a turn to the end of the transcript.
func (t *Transcript) Append(turn Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of the transcript's turns in conversation order.
func (t *Transcript) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}

// Store holds transcripts keyed by session id. It is safe for concurrent
// use; unrelated sessions never contend beyond the map lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Transcript
	logger   *slog.Logger
}

// NewStore creates an empty session store. Constructed once per process and
// injected into the dispatcher; there is no package-level instance.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Transcript),
		logger:   logger.With("component", "session"),
	}
}

// GetOrCreate returns the transcript for a session id, creating it if
// needed. Two concurrent callers for an unseen id observe the same
// transcript: the check and insert happen under one lock.
func (s *Store) GetOrCreate(sessionID string) *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.sessions[sessionID]; ok {
		return t
	}
	t := &Transcript{}
	s.sessions[sessionID] = t
	s.logger.Debug("session created", "session_id", sessionID)
	return t
}

// Get returns the turns for a session id, or nil if the session does not
// exist. Reading never creates a session.
func (s *Store) Get(sessionID string) []Turn {
	s.mu.RLock()
	t, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return t.Turns()
}

// Append adds a turn to a session, creating the session if needed.
func (s *Store) Append(sessionID string, turn Turn) {
	s.GetOrCreate(sessionID).Append(turn)
}

// Clear discards a session's transcript in one step. Clearing a session
// that does not exist is not an error.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
