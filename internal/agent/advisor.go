// ABOUTME: FinancialAdvisor agent: classifies intent and routes to an analysis collaborator
// ABOUTME: GENERAL and unmatched categories fall through to free-form question answering

package agent

import (
	"context"

	"github.com/finbin/advisor-gateway/internal/classify"
)

// FinancialAdvisorName is the default agent for dispatches that name none.
const FinancialAdvisorName = "FinancialAdvisor"

// Classifier categorizes a free-text message. Classification never fails;
// unrecognized input yields classify.CategoryGeneral.
type Classifier interface {
	Classify(ctx context.Context, message string) string
}

// FinancialAdvisor routes a message by classified intent.
type FinancialAdvisor struct {
	classifier Classifier
	analyzer   Analyzer
}

// NewFinancialAdvisor creates the FinancialAdvisor agent.
func NewFinancialAdvisor(classifier Classifier, analyzer Analyzer) *FinancialAdvisor {
	return &FinancialAdvisor{classifier: classifier, analyzer: analyzer}
}

func (a *FinancialAdvisor) Name() string { return FinancialAdvisorName }

func (a *FinancialAdvisor) Description() string {
	return "I'm your personal financial advisor. I can analyze your spending, suggest budget improvements, and help you reach your financial goals."
}

// GenerateResponse classifies the message and dispatches to the matching
// analysis collaborator.
func (a *FinancialAdvisor) GenerateResponse(ctx context.Context, userID int64, message string) (string, error) {
	switch a.classifier.Classify(ctx, message) {
	case classify.CategoryRecommendations:
		return a.analyzer.Recommendations(ctx, userID)
	case classify.CategoryIncome:
		return a.analyzer.AnalyzeIncome(ctx, userID)
	case classify.CategoryExpenses:
		return a.analyzer.AnalyzeExpenses(ctx, userID)
	case classify.CategorySummary:
		return a.analyzer.AnalyzeSummary(ctx, userID)
	case classify.CategoryTransactions:
		return a.analyzer.CategorizeTransactions(ctx, userID)
	default:
		return a.analyzer.AskQuestion(ctx, userID, message)
	}
}
