// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides profile/transaction persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS history_events (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id         INTEGER NOT NULL,
			timestamp       TEXT NOT NULL,
			event_type      TEXT NOT NULL,
			description     TEXT NOT NULL,
			additional_data TEXT,
			summarized      INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_history_user_summarized
			ON history_events(user_id, summarized);

		CREATE INDEX IF NOT EXISTS idx_history_user_timestamp
			ON history_events(user_id, timestamp);

		CREATE TABLE IF NOT EXISTS history_summaries (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      INTEGER NOT NULL,
			created_at   TEXT NOT NULL,
			from_date    TEXT NOT NULL,
			to_date      TEXT NOT NULL,
			summary_text TEXT NOT NULL,
			event_ids    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_summaries_user_to_date
			ON history_summaries(user_id, to_date);

		CREATE TABLE IF NOT EXISTS financial_profiles (
			user_id            INTEGER PRIMARY KEY,
			salary             REAL NOT NULL DEFAULT 0,
			investments        REAL NOT NULL DEFAULT 0,
			business_income    REAL NOT NULL DEFAULT 0,
			rent_mortgage      REAL NOT NULL DEFAULT 0,
			utilities          REAL NOT NULL DEFAULT 0,
			loan_payments      REAL NOT NULL DEFAULT 0,
			insurance          REAL NOT NULL DEFAULT 0,
			groceries          REAL NOT NULL DEFAULT 0,
			transportation     REAL NOT NULL DEFAULT 0,
			subscriptions      REAL NOT NULL DEFAULT 0,
			entertainment      REAL NOT NULL DEFAULT 0,
			savings_balance    REAL NOT NULL DEFAULT 0,
			investment_balance REAL NOT NULL DEFAULT 0,
			debt_balance       REAL NOT NULL DEFAULT 0,
			updated_at         TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS transactions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL,
			description TEXT NOT NULL,
			amount      REAL NOT NULL,
			category    TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_user
			ON transactions(user_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetProfile retrieves a user's financial profile.
// Returns ErrNotFound if the user has no profile.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID int64) (*FinancialProfile, error) {
	p := &FinancialProfile{UserID: userID}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT salary, investments, business_income,
		       rent_mortgage, utilities, loan_payments, insurance,
		       groceries, transportation, subscriptions, entertainment,
		       savings_balance, investment_balance, debt_balance, updated_at
		FROM financial_profiles WHERE user_id = ?`, userID).Scan(
		&p.Salary, &p.Investments, &p.BusinessIncome,
		&p.RentMortgage, &p.Utilities, &p.LoanPayments, &p.Insurance,
		&p.Groceries, &p.Transportation, &p.Subscriptions, &p.Entertainment,
		&p.SavingsBalance, &p.InvestmentBalance, &p.DebtBalance, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	p.UpdatedAt, err = time.Parse(timeFormat, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing profile timestamp: %w", err)
	}
	return p, nil
}

// SaveProfile inserts or replaces a user's financial profile.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *FinancialProfile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO financial_profiles (
			user_id, salary, investments, business_income,
			rent_mortgage, utilities, loan_payments, insurance,
			groceries, transportation, subscriptions, entertainment,
			savings_balance, investment_balance, debt_balance, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Salary, p.Investments, p.BusinessIncome,
		p.RentMortgage, p.Utilities, p.LoanPayments, p.Insurance,
		p.Groceries, p.Transportation, p.Subscriptions, p.Entertainment,
		p.SavingsBalance, p.InvestmentBalance, p.DebtBalance,
		p.UpdatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// SaveTransaction inserts a transaction and sets its generated ID.
func (s *SQLiteStore) SaveTransaction(ctx context.Context, tx *Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, description, amount, category, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		tx.UserID, tx.Description, tx.Amount, tx.Category,
		tx.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("saving transaction: %w", err)
	}
	tx.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading transaction id: %w", err)
	}
	return nil
}

// ListUncategorizedTransactions returns transactions without a category,
// oldest first.
func (s *SQLiteStore) ListUncategorizedTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, description, amount, category, created_at
		FROM transactions
		WHERE user_id = ? AND category = ''
		ORDER BY created_at ASC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		tx := &Transaction{}
		var createdAt string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Description, &tx.Amount, &tx.Category, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		tx.CreatedAt, err = time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing transaction timestamp: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SetTransactionCategory assigns a category to a transaction.
func (s *SQLiteStore) SetTransactionCategory(ctx context.Context, id int64, category string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category = ? WHERE id = ?`, category, id)
	if err != nil {
		return fmt.Errorf("updating transaction category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
