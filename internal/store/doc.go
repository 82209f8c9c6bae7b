// Package store provides persistent storage for the gateway using SQLite.
//
// # Architecture
//
// The Store interface covers four areas:
//
//   - History timeline: append-only HistoryEvents per user
//   - Summaries: AI-generated digests that retire batches of events
//   - Financial profiles: income, expense, and balance figures
//   - Transactions: individual entries awaiting categorization
//
// SQLiteStore implements the whole interface in a single struct.
//
// # Data Models
//
//   - HistoryEvent: one timeline entry; starts unsummarized, flipped
//     exactly once by compaction
//   - HistorySummary: immutable digest spanning FromDate..ToDate
//   - FinancialProfile: one row per user, replaced on save
//   - Transaction: description + amount, Category empty until assigned
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as fixed-width UTC text so that lexicographic
// ORDER BY matches chronological order.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a t.TempDir() path for tests; the schema is
// created automatically on open.
package store
