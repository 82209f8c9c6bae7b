// ABOUTME: History timeline service: append-only per-user events with threshold compaction
// ABOUTME: Summarization persists the summary and marks covered events in one transaction

package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finbin/advisor-gateway/internal/completion"
	"github.com/finbin/advisor-gateway/internal/store"
)

// ErrNothingToSummarize is returned by SummarizePeriod when no
// unsummarized events fall in the requested range.
var ErrNothingToSummarize = errors.New("no history events found in the specified date range")

// DefaultThreshold is the unsummarized-event count that triggers
// automatic compaction for a user.
const DefaultThreshold = 100

const summaryInstruction = "Summarize these financial events into a concise paragraph highlighting key patterns, " +
	"achievements, financial decisions, and overall progress. Focus on actionable insights " +
	"and notable changes in financial behavior:"

// Store defines what the history service needs from storage
type Store interface {
	SaveHistoryEvent(ctx context.Context, event *store.HistoryEvent) error
	CountUnsummarized(ctx context.Context, userID int64) (int, error)
	ListUnsummarizedOldest(ctx context.Context, userID int64, limit int) ([]*store.HistoryEvent, error)
	ListUnsummarizedRange(ctx context.Context, userID int64, from, to time.Time) ([]*store.HistoryEvent, error)
	ListUnsummarizedEvents(ctx context.Context, userID int64, limit, offset int) ([]*store.HistoryEvent, error)
	ListSummaries(ctx context.Context, userID int64, limit, offset int) ([]*store.HistorySummary, error)
	SummarizeAndMark(ctx context.Context, summary *store.HistorySummary, eventIDs []int64) error
}

// Service owns the per-user event timeline and its compaction.
//
// Compaction is decoupled from the append path: AppendEvent persists the
// event and nudges the background worker, which re-evaluates the threshold
// itself. Nudges carry no state, so losing or duplicating one is harmless.
type Service struct {
	store     Store
	client    completion.Client
	threshold int
	logger    *slog.Logger
	nudges    chan int64
}

// New creates a history service. A threshold <= 0 selects DefaultThreshold.
func New(s Store, client completion.Client, threshold int, logger *slog.Logger) *Service {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     s,
		client:    client,
		threshold: threshold,
		logger:    logger.With("component", "history"),
		nudges:    make(chan int64, 64),
	}
}

// AppendEvent persists a new timeline event and nudges the compaction
// worker for that user. The append returns as soon as the event is durable;
// summarization latency never sits on the caller's critical path.
func (s *Service) AppendEvent(ctx context.Context, userID int64, eventType, description, additionalData string) (*store.HistoryEvent, error) {
	event := &store.HistoryEvent{
		UserID:         userID,
		EventType:      eventType,
		Description:    description,
		AdditionalData: additionalData,
	}
	if err := s.store.SaveHistoryEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("appending history event: %w", err)
	}

	select {
	case s.nudges <- userID:
	default:
		// Channel full. Dropping is safe: the worker re-checks the count
		// on the user's next nudge, and events above the threshold stay
		// eligible until then.
	}

	return event, nil
}

// Run processes compaction nudges until the context is cancelled. Intended
// to run as a single background goroutine.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case userID := <-s.nudges:
			if err := s.Compact(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
				// Events stay unsummarized on failure; the next nudge
				// retries the same batch.
				s.logger.Error("compaction failed", "user_id", userID, "error", err)
			}
		}
	}
}

// Compact summarizes batches of the user's oldest unsummarized events for
// as long as the count stays at or above the threshold. Normally driven by
// Run, but safe to call directly; a batch that fails stays eligible.
func (s *Service) Compact(ctx context.Context, userID int64) error {
	for {
		count, err := s.store.CountUnsummarized(ctx, userID)
		if err != nil {
			return fmt.Errorf("counting events: %w", err)
		}
		if count < s.threshold {
			return nil
		}

		events, err := s.store.ListUnsummarizedOldest(ctx, userID, s.threshold)
		if err != nil {
			return fmt.Errorf("selecting events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		if _, err := s.summarize(ctx, userID, events); err != nil {
			return err
		}
	}
}

// SummarizePeriod summarizes all unsummarized events for the user in
// [from, to] inclusive, with no count cap. Returns ErrNothingToSummarize
// when the selection is empty.
func (s *Service) SummarizePeriod(ctx context.Context, userID int64, from, to time.Time) (*store.HistorySummary, error) {
	events, err := s.store.ListUnsummarizedRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("selecting events: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrNothingToSummarize
	}
	return s.summarize(ctx, userID, events)
}

// summarize runs the shared summarization algorithm over a selected set:
// digest the events, ask the completion backend for a summary paragraph,
// then persist the summary and mark every event in one atomic unit.
func (s *Service) summarize(ctx context.Context, userID int64, events []*store.HistoryEvent) (*store.HistorySummary, error) {
	fromDate := events[0].Timestamp
	toDate := events[0].Timestamp
	ids := make([]int64, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
		if ev.Timestamp.Before(fromDate) {
			fromDate = ev.Timestamp
		}
		if ev.Timestamp.After(toDate) {
			toDate = ev.Timestamp
		}
	}

	text, err := s.client.Complete(ctx, []completion.Message{
		completion.System(summaryInstruction),
		completion.User(digest(events)),
	})
	if err != nil {
		return nil, fmt.Errorf("generating summary: %w", err)
	}

	summary := &store.HistorySummary{
		UserID:      userID,
		FromDate:    fromDate,
		ToDate:      toDate,
		SummaryText: text,
	}
	if err := s.store.SummarizeAndMark(ctx, summary, ids); err != nil {
		return nil, fmt.Errorf("persisting summary: %w", err)
	}

	s.logger.Info("history period summarized",
		"user_id", userID,
		"events", len(events),
		"from", fromDate,
		"to", toDate)
	return summary, nil
}

// digest renders the deterministic line-per-event text fed to the
// summarization request, events in ascending timestamp order.
func digest(events []*store.HistoryEvent) string {
	var b strings.Builder
	b.WriteString("Financial history events to summarize:\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "- %s: [%s] %s\n", ev.Timestamp.Format("2006-01-02"), ev.EventType, ev.Description)
	}
	return b.String()
}

// Events returns a page of the user's unsummarized events, newest first.
func (s *Service) Events(ctx context.Context, userID int64, limit, offset int) ([]*store.HistoryEvent, error) {
	return s.store.ListUnsummarizedEvents(ctx, userID, limit, offset)
}

// Summaries returns a page of the user's summaries, most recent period first.
func (s *Service) Summaries(ctx context.Context, userID int64, limit, offset int) ([]*store.HistorySummary, error) {
	return s.store.ListSummaries(ctx, userID, limit, offset)
}
