// ABOUTME: HTTP-level tests for the gateway's JSON API
// ABOUTME: Runs against httptest with a real SQLite store and scripted completion clients

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbin/advisor-gateway/internal/agent"
	"github.com/finbin/advisor-gateway/internal/analysis"
	"github.com/finbin/advisor-gateway/internal/completion"
	"github.com/finbin/advisor-gateway/internal/conversation"
	"github.com/finbin/advisor-gateway/internal/history"
	"github.com/finbin/advisor-gateway/internal/session"
	"github.com/finbin/advisor-gateway/internal/store"
)

type stubAgent struct {
	name        string
	description string
	reply       string
	err         error
}

func (a *stubAgent) Name() string        { return a.name }
func (a *stubAgent) Description() string { return a.description }

func (a *stubAgent) GenerateResponse(ctx context.Context, userID int64, message string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

type staticClient struct {
	response string
}

func (c *staticClient) Complete(ctx context.Context, messages []completion.Message) (string, error) {
	return c.response, nil
}

func newTestGateway(t *testing.T) (*Gateway, *store.SQLiteStore) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	registry, err := agent.NewRegistry(
		&stubAgent{name: agent.FinancialAdvisorName, description: "Handles financial questions", reply: "advisor reply"},
		&stubAgent{name: agent.BudgetAnalystName, description: "Analyzes budgets", reply: "analyst reply"},
	)
	require.NoError(t, err)

	conv := conversation.New(session.NewStore(nil), registry, 0, nil)
	hist := history.New(st, &staticClient{response: "period summary"}, 10, nil)
	anal := analysis.New(st, &staticClient{response: "some advice"}, nil)

	return New("127.0.0.1:0", conv, hist, anal, nil), st
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestSendMessageReturnsAssistantTurn(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/chat/send", sendMessageRequest{
		Message: "How should I budget?",
		UserID:  1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[sendMessageResponse](t, rec)
	assert.Equal(t, "assistant", resp.Role)
	assert.Equal(t, "advisor reply", resp.Content)
	assert.NotEmpty(t, resp.SessionID, "a session id should be generated when none is supplied")
	assert.False(t, resp.Timestamp.IsZero())
}

func TestSendMessageReusesSessionID(t *testing.T) {
	g, _ := newTestGateway(t)

	first := decode[sendMessageResponse](t, doJSON(t, g.Handler(), http.MethodPost, "/api/chat/send", sendMessageRequest{
		Message: "hello",
		UserID:  1,
	}))

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/chat/send", sendMessageRequest{
		SessionID: first.SessionID,
		Message:   "again",
		UserID:    1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.SessionID, decode[sendMessageResponse](t, rec).SessionID)

	histRec := doJSON(t, g.Handler(), http.MethodGet, "/api/chat/history/"+first.SessionID, nil)
	require.Equal(t, http.StatusOK, histRec.Code)
	turns := decode[[]turnResponse](t, histRec)
	require.Len(t, turns, 4)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.Equal(t, "user", turns[2].Role)
	assert.Equal(t, "again", turns[2].Content)
}

func TestSendMessageRejectsEmptyMessage(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/chat/send", sendMessageRequest{
		Message: "   ",
		UserID:  1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessageUnknownAgent(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/chat/send", sendMessageRequest{
		SessionID: "s1",
		Message:   "hello",
		AgentName: "Nope",
		UserID:    1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Contains(t, body["error"], `agent "Nope" not found`)
	assert.Contains(t, body["error"], agent.BudgetAnalystName)
	assert.Contains(t, body["error"], agent.FinancialAdvisorName)

	// Nothing should have been recorded against the session.
	histRec := doJSON(t, g.Handler(), http.MethodGet, "/api/chat/history/s1", nil)
	assert.Empty(t, decode[[]turnResponse](t, histRec))
}

func TestListAgents(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodGet, "/api/chat/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	agents := decode[[]agentInfo](t, rec)
	require.Len(t, agents, 2)
	assert.Equal(t, agent.FinancialAdvisorName, agents[0].Name)
	assert.Equal(t, agent.BudgetAnalystName, agents[1].Name)
	assert.NotEmpty(t, agents[0].Description)
}

func TestSessionHistoryUnknownSessionIsEmpty(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodGet, "/api/chat/history/never-seen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]turnResponse](t, rec))
}

func TestDeleteSessionHistory(t *testing.T) {
	g, _ := newTestGateway(t)

	doJSON(t, g.Handler(), http.MethodPost, "/api/chat/send", sendMessageRequest{
		SessionID: "s1",
		Message:   "hello",
		UserID:    1,
	})

	rec := doJSON(t, g.Handler(), http.MethodDelete, "/api/chat/history/s1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	histRec := doJSON(t, g.Handler(), http.MethodGet, "/api/chat/history/s1", nil)
	assert.Empty(t, decode[[]turnResponse](t, histRec))

	// Deleting again is fine.
	rec = doJSON(t, g.Handler(), http.MethodDelete, "/api/chat/history/s1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAppendAndListHistoryEvents(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/history/events", historyEventRequest{
		UserID:      7,
		EventType:   "Expense",
		Description: "Paid rent",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[historyEventResponse](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Expense", created.EventType)

	listRec := doJSON(t, g.Handler(), http.MethodGet, "/api/history?user_id=7", nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	events := decode[[]historyEventResponse](t, listRec)
	require.Len(t, events, 1)
	assert.Equal(t, "Paid rent", events[0].Description)

	// Another user sees nothing.
	otherRec := doJSON(t, g.Handler(), http.MethodGet, "/api/history?user_id=8", nil)
	assert.Empty(t, decode[[]historyEventResponse](t, otherRec))
}

func TestListHistoryRequiresUserID(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppendEventRequiresFields(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/history/events", historyEventRequest{
		UserID:    7,
		EventType: "Expense",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizeEmptyRangeIs404(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/history/summarize", summarizeRequest{
		UserID:   7,
		FromDate: "2026-01-01",
		ToDate:   "2026-01-31",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "no history entries found in the specified date range", body["error"])
}

func TestSummarizePeriodAndListSummaries(t *testing.T) {
	g, _ := newTestGateway(t)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, g.Handler(), http.MethodPost, "/api/history/events", historyEventRequest{
			UserID:      7,
			EventType:   "Expense",
			Description: fmt.Sprintf("Purchase %d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/history/summarize", summarizeRequest{
		UserID:   7,
		FromDate: "2020-01-01",
		ToDate:   "2030-01-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[summaryResponse](t, rec)
	assert.Equal(t, "period summary", summary.SummaryText)
	assert.Equal(t, 3, summary.EventCount)

	listRec := doJSON(t, g.Handler(), http.MethodGet, "/api/history/summaries?user_id=7", nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	summaries := decode[[]summaryResponse](t, listRec)
	require.Len(t, summaries, 1)
	assert.Equal(t, "period summary", summaries[0].SummaryText)

	// The summarized events are no longer pending.
	eventsRec := doJSON(t, g.Handler(), http.MethodGet, "/api/history?user_id=7", nil)
	assert.Empty(t, decode[[]historyEventResponse](t, eventsRec))
}

func TestSummarizeRejectsBadDates(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/history/summarize", summarizeRequest{
		UserID:   7,
		FromDate: "not-a-date",
		ToDate:   "2026-01-31",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisEndpoints(t *testing.T) {
	g, st := newTestGateway(t)

	require.NoError(t, st.SaveProfile(context.Background(), &store.FinancialProfile{
		UserID:         7,
		Salary:         5000,
		RentMortgage:   1500,
		SavingsBalance: 10000,
	}))

	rec := doJSON(t, g.Handler(), http.MethodGet, "/api/analysis/income?user_id=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[analysisResponse](t, rec).Result, "$5000.00")

	rec = doJSON(t, g.Handler(), http.MethodGet, "/api/analysis/expenses?user_id=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[analysisResponse](t, rec).Result, "Total Expenses")

	rec = doJSON(t, g.Handler(), http.MethodPost, "/api/analysis/recommendations", questionRequest{UserID: 7})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "some advice", decode[analysisResponse](t, rec).Result)

	rec = doJSON(t, g.Handler(), http.MethodPost, "/api/analysis/question", questionRequest{
		UserID:   7,
		Question: "Can I afford a vacation?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "some advice", decode[analysisResponse](t, rec).Result)
}

func TestQuestionRequiresQuestion(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodPost, "/api/analysis/question", questionRequest{UserID: 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := doJSON(t, g.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
