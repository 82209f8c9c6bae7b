// ABOUTME: History timeline queries and the transactional summarize-and-mark operation
// ABOUTME: Events are append-only; compaction marks them summarized in one transaction

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timeFormat is a fixed-width RFC3339 variant so stored timestamps sort
// lexicographically. time.RFC3339Nano drops trailing zeros and would not.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SaveHistoryEvent inserts a new timeline event and sets its generated ID.
// New events are always unsummarized.
func (s *SQLiteStore) SaveHistoryEvent(ctx context.Context, event *HistoryEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO history_events (user_id, timestamp, event_type, description, additional_data, summarized)
		VALUES (?, ?, ?, ?, ?, 0)`,
		event.UserID, event.Timestamp.UTC().Format(timeFormat),
		event.EventType, event.Description, event.AdditionalData)
	if err != nil {
		return fmt.Errorf("saving history event: %w", err)
	}
	event.Summarized = false
	event.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading event id: %w", err)
	}
	return nil
}

// CountUnsummarized returns the number of unsummarized events for a user.
func (s *SQLiteStore) CountUnsummarized(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history_events WHERE user_id = ? AND summarized = 0`,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unsummarized events: %w", err)
	}
	return count, nil
}

// ListUnsummarizedOldest returns up to limit unsummarized events for a user,
// oldest first. This is the selection used by threshold-triggered compaction.
func (s *SQLiteStore) ListUnsummarizedOldest(ctx context.Context, userID int64, limit int) ([]*HistoryEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, timestamp, event_type, description, additional_data, summarized
		FROM history_events
		WHERE user_id = ? AND summarized = 0
		ORDER BY timestamp ASC, id ASC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying oldest unsummarized events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListUnsummarizedRange returns unsummarized events with timestamps in
// [from, to] inclusive, oldest first.
func (s *SQLiteStore) ListUnsummarizedRange(ctx context.Context, userID int64, from, to time.Time) ([]*HistoryEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, timestamp, event_type, description, additional_data, summarized
		FROM history_events
		WHERE user_id = ? AND summarized = 0 AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, id ASC`,
		userID, from.UTC().Format(timeFormat), to.UTC().Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("querying unsummarized range: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListUnsummarizedEvents returns a page of unsummarized events for a user,
// newest first.
func (s *SQLiteStore) ListUnsummarizedEvents(ctx context.Context, userID int64, limit, offset int) ([]*HistoryEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, timestamp, event_type, description, additional_data, summarized
		FROM history_events
		WHERE user_id = ? AND summarized = 0
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying unsummarized events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// SummarizeAndMark persists a summary and marks the covered events
// summarized in a single transaction. On any failure nothing is committed,
// so the events stay eligible for a retried summarization.
func (s *SQLiteStore) SummarizeAndMark(ctx context.Context, summary *HistorySummary, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return fmt.Errorf("no events to mark")
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	idsJSON, err := json.Marshal(eventIDs)
	if err != nil {
		return fmt.Errorf("serializing event ids: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO history_summaries (user_id, created_at, from_date, to_date, summary_text, event_ids)
		VALUES (?, ?, ?, ?, ?, ?)`,
		summary.UserID, summary.CreatedAt.UTC().Format(timeFormat),
		summary.FromDate.UTC().Format(timeFormat), summary.ToDate.UTC().Format(timeFormat),
		summary.SummaryText, string(idsJSON))
	if err != nil {
		return fmt.Errorf("inserting summary: %w", err)
	}
	summary.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading summary id: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(eventIDs)), ",")
	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		args[i] = id
	}
	res, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE history_events SET summarized = 1 WHERE id IN (%s) AND summarized = 0`, placeholders),
		args...)
	if err != nil {
		return fmt.Errorf("marking events summarized: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking marked events: %w", err)
	}
	if n != int64(len(eventIDs)) {
		// Some event was already claimed by another summary; abort rather
		// than double-summarize.
		return fmt.Errorf("marked %d of %d events, aborting", n, len(eventIDs))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing summary: %w", err)
	}

	summary.EventIDs = eventIDs
	s.logger.Info("history compacted",
		"user_id", summary.UserID,
		"summary_id", summary.ID,
		"events", len(eventIDs))
	return nil
}

// ListSummaries returns a page of summaries for a user, most recent period first.
func (s *SQLiteStore) ListSummaries(ctx context.Context, userID int64, limit, offset int) ([]*HistorySummary, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, created_at, from_date, to_date, summary_text, event_ids
		FROM history_summaries
		WHERE user_id = ?
		ORDER BY to_date DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*HistorySummary
	for rows.Next() {
		sum := &HistorySummary{}
		var createdAt, fromDate, toDate, idsJSON string
		if err := rows.Scan(&sum.ID, &sum.UserID, &createdAt, &fromDate, &toDate, &sum.SummaryText, &idsJSON); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if sum.FromDate, err = time.Parse(timeFormat, fromDate); err != nil {
			return nil, fmt.Errorf("parsing from_date: %w", err)
		}
		if sum.ToDate, err = time.Parse(timeFormat, toDate); err != nil {
			return nil, fmt.Errorf("parsing to_date: %w", err)
		}
		if err := json.Unmarshal([]byte(idsJSON), &sum.EventIDs); err != nil {
			return nil, fmt.Errorf("parsing event ids: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// rowScanner is satisfied by *sql.Rows
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEvents(rows rowScanner) ([]*HistoryEvent, error) {
	var events []*HistoryEvent
	for rows.Next() {
		ev := &HistoryEvent{}
		var ts string
		var summarized int
		if err := rows.Scan(&ev.ID, &ev.UserID, &ts, &ev.EventType, &ev.Description, &ev.AdditionalData, &summarized); err != nil {
			return nil, fmt.Errorf("scanning history event: %w", err)
		}
		t, err := time.Parse(timeFormat, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing event timestamp: %w", err)
		}
		ev.Timestamp = t
		ev.Summarized = summarized != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}
