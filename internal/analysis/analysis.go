// ABOUTME: Financial analysis collaborators: income, expenses, summary, categorization, recommendations
// ABOUTME: Functions of a user id returning text; categorization also mutates transaction categories

package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finbin/advisor-gateway/internal/completion"
	"github.com/finbin/advisor-gateway/internal/store"
)

// ProfileStore defines what the analysis service needs from storage
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (*store.FinancialProfile, error)
	ListUncategorizedTransactions(ctx context.Context, userID int64, limit int) ([]*store.Transaction, error)
	SetTransactionCategory(ctx context.Context, id int64, category string) error
}

// transaction categories assignable by auto-categorization
var transactionCategories = []string{
	"Groceries", "Dining", "Transportation", "Entertainment",
	"Utilities", "Subscriptions", "Shopping", "Income", "Other",
}

// Service implements the financial analysis collaborators consumed by the
// capability providers.
type Service struct {
	store  ProfileStore
	client completion.Client
	logger *slog.Logger
}

// New creates an analysis service.
func New(s ProfileStore, client completion.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		client: client,
		logger: logger.With("component", "analysis"),
	}
}

// AnalyzeIncome reports the user's income sources.
func (s *Service) AnalyzeIncome(ctx context.Context, userID int64) (string, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "No income data found.", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading profile: %w", err)
	}
	if p.TotalIncome() == 0 {
		return "No income data found.", nil
	}

	return fmt.Sprintf("User's salary: %s, Investments: %s, Business Income: %s.",
		money(p.Salary), money(p.Investments), money(p.BusinessIncome)), nil
}

// AnalyzeExpenses reports the user's expense breakdown.
func (s *Service) AnalyzeExpenses(ctx context.Context, userID int64) (string, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "No expense data found.", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading profile: %w", err)
	}
	if p.TotalExpenses() == 0 {
		return "No expense data found.", nil
	}

	return fmt.Sprintf("Total Expenses: %s. Breakdown - Rent: %s, Utilities: %s, Loans: %s.",
		money(p.TotalExpenses()), money(p.RentMortgage), money(p.Utilities), money(p.LoanPayments)), nil
}

// AnalyzeSummary reports net worth alongside income and expense totals.
func (s *Service) AnalyzeSummary(ctx context.Context, userID int64) (string, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "No financial summary found.", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading profile: %w", err)
	}

	return fmt.Sprintf("Net Worth: %s. Total Income: %s, Total Expenses: %s.",
		money(p.NetWorth()), money(p.TotalIncome()), money(p.TotalExpenses())), nil
}

// Recommendations asks the completion backend for budget recommendations
// grounded in the user's profile figures.
func (s *Service) Recommendations(ctx context.Context, userID int64) (string, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "No financial data found to base recommendations on.", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading profile: %w", err)
	}

	digest := fmt.Sprintf(
		"Monthly income: %s (salary %s, investments %s, business %s). "+
			"Monthly expenses: %s (rent/mortgage %s, utilities %s, loans %s, insurance %s, "+
			"groceries %s, transportation %s, subscriptions %s, entertainment %s). "+
			"Balances: savings %s, investments %s, debt %s.",
		money(p.TotalIncome()), money(p.Salary), money(p.Investments), money(p.BusinessIncome),
		money(p.TotalExpenses()), money(p.RentMortgage), money(p.Utilities), money(p.LoanPayments),
		money(p.Insurance), money(p.Groceries), money(p.Transportation), money(p.Subscriptions),
		money(p.Entertainment),
		money(p.SavingsBalance), money(p.InvestmentBalance), money(p.DebtBalance))

	text, err := s.client.Complete(ctx, []completion.Message{
		completion.System("You are a personal financial advisor. Based on the user's financial figures, " +
			"suggest specific, actionable ways to reduce expenses and improve savings. Be concise."),
		completion.User(digest),
	})
	if err != nil {
		return "", fmt.Errorf("generating recommendations: %w", err)
	}
	return text, nil
}

// CategorizeTransactions assigns a category to each uncategorized
// transaction using the completion backend. This is the only analysis
// operation with a side effect.
func (s *Service) CategorizeTransactions(ctx context.Context, userID int64) (string, error) {
	txs, err := s.store.ListUncategorizedTransactions(ctx, userID, 50)
	if err != nil {
		return "", fmt.Errorf("listing transactions: %w", err)
	}
	if len(txs) == 0 {
		return "No uncategorized transactions found.", nil
	}

	var lines []string
	for _, tx := range txs {
		category, err := s.categorize(ctx, tx)
		if err != nil {
			return "", fmt.Errorf("categorizing transaction %d: %w", tx.ID, err)
		}
		if err := s.store.SetTransactionCategory(ctx, tx.ID, category); err != nil {
			return "", fmt.Errorf("saving category for transaction %d: %w", tx.ID, err)
		}
		lines = append(lines, fmt.Sprintf("%s -> %s", tx.Description, category))
	}

	return fmt.Sprintf("Categorized %d transactions:\n%s", len(txs), strings.Join(lines, "\n")), nil
}

// categorize picks a category for one transaction, defaulting to Other
// when the model's answer is not in the allowed set.
func (s *Service) categorize(ctx context.Context, tx *store.Transaction) (string, error) {
	raw, err := s.client.Complete(ctx, []completion.Message{
		completion.System("Categorize the transaction into exactly one of: " +
			strings.Join(transactionCategories, ", ") + ". Respond with only the category name."),
		completion.User(fmt.Sprintf("%s (%s)", tx.Description, money(tx.Amount))),
	})
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(raw)
	for _, c := range transactionCategories {
		if strings.EqualFold(answer, c) {
			return c, nil
		}
	}
	s.logger.Debug("unrecognized transaction category", "answer", answer, "transaction_id", tx.ID)
	return "Other", nil
}

// AskQuestion answers a free-form financial question, with the user's
// profile as context when one exists.
func (s *Service) AskQuestion(ctx context.Context, userID int64, question string) (string, error) {
	messages := []completion.Message{
		completion.System("You are a personal financial advisor. Answer the user's question clearly and concisely."),
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("loading profile: %w", err)
	}
	if err == nil {
		messages = append(messages, completion.System(fmt.Sprintf(
			"The user's figures: total income %s, total expenses %s, net worth %s.",
			money(p.TotalIncome()), money(p.TotalExpenses()), money(p.NetWorth()))))
	}

	messages = append(messages, completion.User(question))
	text, err := s.client.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("answering question: %w", err)
	}
	return text, nil
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}
