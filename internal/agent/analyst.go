// ABOUTME: BudgetAnalyst agent: keyword-routed expense and savings analysis
// ABOUTME: Falls back to a budget-optimization chat when no keyword matches

package agent

import (
	"context"
	"strings"

	"github.com/finbin/advisor-gateway/internal/completion"
)

// BudgetAnalystName identifies the budget analyst agent.
const BudgetAnalystName = "BudgetAnalyst"

var (
	expenseKeywords        = []string{"where", "spending"}
	recommendationKeywords = []string{"save", "reduce"}
)

// BudgetAnalyst routes by keyword instead of a classifier call.
type BudgetAnalyst struct {
	analyzer Analyzer
	client   completion.Client
}

// NewBudgetAnalyst creates the BudgetAnalyst agent.
func NewBudgetAnalyst(analyzer Analyzer, client completion.Client) *BudgetAnalyst {
	return &BudgetAnalyst{analyzer: analyzer, client: client}
}

func (a *BudgetAnalyst) Name() string { return BudgetAnalystName }

func (a *BudgetAnalyst) Description() string {
	return "I specialize in analyzing your spending patterns and suggesting ways to optimize your budget."
}

// GenerateResponse matches the message against the fixed keyword sets and
// falls back to a general budget chat.
func (a *BudgetAnalyst) GenerateResponse(ctx context.Context, userID int64, message string) (string, error) {
	if containsAny(message, expenseKeywords) {
		return a.analyzer.AnalyzeExpenses(ctx, userID)
	}
	if containsAny(message, recommendationKeywords) {
		return a.analyzer.Recommendations(ctx, userID)
	}

	text, err := a.client.Complete(ctx, []completion.Message{
		completion.System("You are a budget optimization specialist. Focus on helping the user reduce unnecessary expenses and optimize their budget."),
		completion.User(message),
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "I couldn't analyze your budget at this time.", nil
	}
	return text, nil
}

func containsAny(message string, keywords []string) bool {
	lower := strings.ToLower(message)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
