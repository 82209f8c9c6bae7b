// ABOUTME: Tests for the history timeline and compaction engine
// ABOUTME: Verifies the watermark trigger, atomic marking, and retry safety

package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbin/advisor-gateway/internal/completion"
	"github.com/finbin/advisor-gateway/internal/store"
)

// fakeClient implements completion.Client
type fakeClient struct {
	response string
	err      error
	calls    int
	lastMsgs []completion.Message
}

func (f *fakeClient) Complete(ctx context.Context, msgs []completion.Message) (string, error) {
	f.calls++
	f.lastMsgs = msgs
	return f.response, f.err
}

func newTestService(t *testing.T, client completion.Client, threshold int) (*Service, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, client, threshold, nil), s
}

func appendEvents(t *testing.T, svc *Service, userID int64, n int) []*store.HistoryEvent {
	t.Helper()
	events := make([]*store.HistoryEvent, 0, n)
	for i := 0; i < n; i++ {
		ev, err := svc.AppendEvent(context.Background(), userID, "Transaction", fmt.Sprintf("event %d", i), "")
		require.NoError(t, err)
		events = append(events, ev)
	}
	return events
}

func TestAppendEvent_PersistsUnsummarized(t *testing.T) {
	svc, s := newTestService(t, &fakeClient{response: "summary"}, 100)
	ctx := context.Background()

	ev, err := svc.AppendEvent(ctx, 7, "BucketCreated", "created vacation bucket", `{"bucket":"vacation"}`)
	require.NoError(t, err)
	assert.NotZero(t, ev.ID)
	assert.False(t, ev.Summarized)

	count, err := s.CountUnsummarized(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCompact_TriggersExactlyOnceAtWatermark(t *testing.T) {
	client := &fakeClient{response: "the user had a busy period"}
	svc, s := newTestService(t, client, 100)
	ctx := context.Background()

	appendEvents(t, svc, 7, 100)
	require.NoError(t, svc.Compact(ctx, 7))

	assert.Equal(t, 1, client.calls)

	count, err := s.CountUnsummarized(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, count)

	summaries, err := svc.Summaries(ctx, 7, 10, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Len(t, summaries[0].EventIDs, 100)

	// FromDate/ToDate must span the covered events.
	events, err := s.ListUnsummarizedRange(ctx, 7, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.False(t, summaries[0].FromDate.After(summaries[0].ToDate))
}

func TestCompact_BelowWatermarkDoesNothing(t *testing.T) {
	client := &fakeClient{response: "summary"}
	svc, _ := newTestService(t, client, 100)

	appendEvents(t, svc, 7, 99)
	require.NoError(t, svc.Compact(context.Background(), 7))
	assert.Zero(t, client.calls)
}

func TestCompact_DrainsMultipleBatches(t *testing.T) {
	client := &fakeClient{response: "summary"}
	svc, s := newTestService(t, client, 10)
	ctx := context.Background()

	appendEvents(t, svc, 7, 25)
	require.NoError(t, svc.Compact(ctx, 7))

	// 25 events at threshold 10: two batches of 10, five left over.
	assert.Equal(t, 2, client.calls)
	count, err := s.CountUnsummarized(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestCompact_CompletionFailureLeavesEventsEligible(t *testing.T) {
	client := &fakeClient{err: errors.New("backend down")}
	svc, s := newTestService(t, client, 10)
	ctx := context.Background()

	appendEvents(t, svc, 7, 10)
	require.Error(t, svc.Compact(ctx, 7))

	count, err := s.CountUnsummarized(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	// Retry succeeds once the backend recovers.
	client.err = nil
	client.response = "recovered"
	require.NoError(t, svc.Compact(ctx, 7))

	count, err = s.CountUnsummarized(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSummarizePeriod_EmptyRangeIsNoOp(t *testing.T) {
	client := &fakeClient{response: "summary"}
	svc, _ := newTestService(t, client, 100)

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	_, err := svc.SummarizePeriod(context.Background(), 7, from, to)
	require.ErrorIs(t, err, ErrNothingToSummarize)
	assert.Zero(t, client.calls)

	summaries, err := svc.Summaries(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestSummarizePeriod_SecondRunSelectsNothing(t *testing.T) {
	client := &fakeClient{response: "summary"}
	svc, _ := newTestService(t, client, 100)
	ctx := context.Background()

	appendEvents(t, svc, 7, 5)
	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	summary, err := svc.SummarizePeriod(ctx, 7, from, to)
	require.NoError(t, err)
	assert.Len(t, summary.EventIDs, 5)

	// Everything in the window is now summarized.
	_, err = svc.SummarizePeriod(ctx, 7, from, to)
	require.ErrorIs(t, err, ErrNothingToSummarize)
}

func TestSummarize_DigestFormat(t *testing.T) {
	client := &fakeClient{response: "summary"}
	svc, _ := newTestService(t, client, 100)
	ctx := context.Background()

	_, err := svc.AppendEvent(ctx, 7, "GoalAchieved", "paid off credit card", "")
	require.NoError(t, err)

	_, err = svc.SummarizePeriod(ctx, 7, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.Len(t, client.lastMsgs, 2)
	assert.Equal(t, completion.RoleSystem, client.lastMsgs[0].Role)
	assert.Contains(t, client.lastMsgs[0].Content, "concise paragraph")
	assert.Contains(t, client.lastMsgs[1].Content, "Financial history events to summarize:")
	assert.Contains(t, client.lastMsgs[1].Content, "[GoalAchieved] paid off credit card")
	assert.Contains(t, client.lastMsgs[1].Content, time.Now().UTC().Format("2006-01-02"))
}

func TestRun_CompactsOnNudge(t *testing.T) {
	client := &fakeClient{response: "summary"}
	svc, s := newTestService(t, client, 5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()

	appendEvents(t, svc, 7, 5)

	require.Eventually(t, func() bool {
		count, err := s.CountUnsummarized(context.Background(), 7)
		return err == nil && count == 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
