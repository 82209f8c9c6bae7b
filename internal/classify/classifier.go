// ABOUTME: Intent classifier mapping a free-text message onto a fixed category set
// ABOUTME: Classification never fails; anything unrecognized falls back to GENERAL

package classify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/finbin/advisor-gateway/internal/completion"
)

// Categories a user query can be routed to.
const (
	CategoryRecommendations = "RECOMMENDATIONS"
	CategoryIncome          = "INCOME"
	CategoryExpenses        = "EXPENSES"
	CategorySummary         = "SUMMARY"
	CategoryTransactions    = "TRANSACTIONS"
	CategoryGeneral         = "GENERAL"
)

const systemInstruction = "You are a financial assistant that categorizes user queries. " +
	"Respond with only one of these categories: RECOMMENDATIONS, INCOME, EXPENSES, SUMMARY, TRANSACTIONS, or GENERAL."

var knownCategories = map[string]bool{
	CategoryRecommendations: true,
	CategoryIncome:          true,
	CategoryExpenses:        true,
	CategorySummary:         true,
	CategoryTransactions:    true,
	CategoryGeneral:         true,
}

// Classifier wraps a completion client with the category taxonomy prompt.
type Classifier struct {
	client completion.Client
	logger *slog.Logger
}

// New creates a Classifier backed by the given completion client.
func New(client completion.Client, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		client: client,
		logger: logger.With("component", "classify"),
	}
}

// Classify returns the category for a message. A failed or unparseable
// classification is not an error for the request: the result is GENERAL.
func (c *Classifier) Classify(ctx context.Context, message string) string {
	raw, err := c.client.Complete(ctx, []completion.Message{
		completion.System(systemInstruction),
		completion.User(message),
	})
	if err != nil {
		c.logger.Warn("classification failed, defaulting to GENERAL", "error", err)
		return CategoryGeneral
	}

	category := strings.ToUpper(strings.TrimSpace(raw))
	if !knownCategories[category] {
		c.logger.Debug("unrecognized category, defaulting to GENERAL", "category", category)
		return CategoryGeneral
	}
	return category
}
