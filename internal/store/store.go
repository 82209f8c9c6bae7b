// ABOUTME: Store interface and data types for advisor-gateway persistence
// ABOUTME: Defines HistoryEvent, HistorySummary, FinancialProfile and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// HistoryEvent is one entry in a user's append-only activity timeline.
// Events start unsummarized; compaction flips Summarized exactly once.
type HistoryEvent struct {
	ID             int64
	UserID         int64
	Timestamp      time.Time
	EventType      string // e.g. Transaction, BucketCreated, GoalAchieved
	Description    string
	AdditionalData string // optional JSON payload
	Summarized     bool
}

// HistorySummary is an AI-generated digest of a batch of history events.
// Immutable after creation; FromDate/ToDate span the covered events.
type HistorySummary struct {
	ID          int64
	UserID      int64
	CreatedAt   time.Time
	FromDate    time.Time
	ToDate      time.Time
	SummaryText string
	EventIDs    []int64 // ids of the events this summary covers
}

// FinancialProfile holds a user's income, expense, and balance figures.
type FinancialProfile struct {
	UserID         int64
	Salary         float64
	Investments    float64
	BusinessIncome float64

	RentMortgage   float64
	Utilities      float64
	LoanPayments   float64
	Insurance      float64
	Groceries      float64
	Transportation float64
	Subscriptions  float64
	Entertainment  float64

	SavingsBalance    float64
	InvestmentBalance float64
	DebtBalance       float64

	UpdatedAt time.Time
}

// TotalIncome returns the sum of all income sources.
func (p *FinancialProfile) TotalIncome() float64 {
	return p.Salary + p.Investments + p.BusinessIncome
}

// TotalExpenses returns the sum of all expense categories.
func (p *FinancialProfile) TotalExpenses() float64 {
	return p.RentMortgage + p.Utilities + p.LoanPayments + p.Insurance +
		p.Groceries + p.Transportation + p.Subscriptions + p.Entertainment
}

// NetWorth returns balances less debt.
func (p *FinancialProfile) NetWorth() float64 {
	return p.InvestmentBalance + p.SavingsBalance - p.DebtBalance
}

// Transaction is a single user transaction, optionally categorized.
type Transaction struct {
	ID          int64
	UserID      int64
	Description string
	Amount      float64
	Category    string // empty until categorized
	CreatedAt   time.Time
}

// Store defines the interface for advisor-gateway persistence
type Store interface {
	// History timeline
	SaveHistoryEvent(ctx context.Context, event *HistoryEvent) error
	CountUnsummarized(ctx context.Context, userID int64) (int, error)
	ListUnsummarizedOldest(ctx context.Context, userID int64, limit int) ([]*HistoryEvent, error)
	ListUnsummarizedRange(ctx context.Context, userID int64, from, to time.Time) ([]*HistoryEvent, error)
	ListUnsummarizedEvents(ctx context.Context, userID int64, limit, offset int) ([]*HistoryEvent, error)

	// Summaries
	SummarizeAndMark(ctx context.Context, summary *HistorySummary, eventIDs []int64) error
	ListSummaries(ctx context.Context, userID int64, limit, offset int) ([]*HistorySummary, error)

	// Financial profiles
	GetProfile(ctx context.Context, userID int64) (*FinancialProfile, error)
	SaveProfile(ctx context.Context, profile *FinancialProfile) error

	// Transactions
	SaveTransaction(ctx context.Context, tx *Transaction) error
	ListUncategorizedTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
	SetTransactionCategory(ctx context.Context, id int64, category string) error

	// Close releases any resources held by the store
	Close() error
}
