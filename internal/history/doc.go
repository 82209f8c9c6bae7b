// Package history maintains each user's activity timeline and compacts it.
//
// # Timeline
//
// AppendEvent persists a HistoryEvent and nudges the background worker.
// Events accumulate unsummarized until the user's count reaches the
// threshold (100 by default); compaction then summarizes the oldest
// threshold-sized batch through the completion backend and marks those
// events summarized in the same transaction.
//
// # Worker
//
// Run processes nudges from a buffered channel on a single goroutine.
// Nudges are cheap hints, not work items: the worker re-checks the count,
// so dropped or duplicate nudges are harmless and a failed batch stays
// eligible for the next nudge.
//
// # On-demand Summaries
//
// SummarizePeriod summarizes every unsummarized event in an inclusive
// date range regardless of count, returning ErrNothingToSummarize for an
// empty selection.
package history
