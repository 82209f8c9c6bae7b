// ABOUTME: HTTP JSON handlers for chat, history, and analysis endpoints
// ABOUTME: Request/response shapes live here; services hold the semantics

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finbin/advisor-gateway/internal/agent"
	"github.com/finbin/advisor-gateway/internal/history"
	"github.com/finbin/advisor-gateway/internal/store"
)

type sendMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	AgentName string `json:"agent_name"`
	UserID    int64  `json:"user_id"`
}

type turnResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type sendMessageResponse struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type agentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type historyEventRequest struct {
	UserID         int64  `json:"user_id"`
	EventType      string `json:"event_type"`
	Description    string `json:"description"`
	AdditionalData string `json:"additional_data"`
}

type historyEventResponse struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	EventType      string    `json:"event_type"`
	Description    string    `json:"description"`
	AdditionalData string    `json:"additional_data,omitempty"`
}

type summaryResponse struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	FromDate    time.Time `json:"from_date"`
	ToDate      time.Time `json:"to_date"`
	SummaryText string    `json:"summary_text"`
	EventCount  int       `json:"event_count"`
}

type summarizeRequest struct {
	UserID   int64  `json:"user_id"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

type questionRequest struct {
	UserID   int64  `json:"user_id"`
	Question string `json:"question"`
}

type analysisResponse struct {
	Result string `json:"result"`
}

func (g *Gateway) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		g.sendJSONError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	reply, err := g.conversation.Dispatch(r.Context(), req.SessionID, req.UserID, req.AgentName, req.Message)
	if err != nil {
		var notFound *agent.NotFoundError
		if errors.As(err, &notFound) {
			g.sendJSONError(w, http.StatusNotFound, notFound.Error())
			return
		}
		g.logger.Error("dispatch failed", "session_id", req.SessionID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.sendJSON(w, http.StatusOK, sendMessageResponse{
		SessionID: req.SessionID,
		Role:      string(reply.Role),
		Content:   reply.Content,
		Timestamp: reply.Timestamp,
	})
}

func (g *Gateway) handleListAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	agents := g.conversation.Agents()
	out := make([]agentInfo, 0, len(agents))
	for _, a := range agents {
		out = append(out, agentInfo{Name: a.Name(), Description: a.Description()})
	}
	g.sendJSON(w, http.StatusOK, out)
}

// handleSessionHistory serves GET and DELETE for /api/chat/history/{sessionID}.
func (g *Gateway) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/chat/history/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "session id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		turns := g.conversation.Transcript(sessionID)
		out := make([]turnResponse, 0, len(turns))
		for _, t := range turns {
			out = append(out, turnResponse{Role: string(t.Role), Content: t.Content, Timestamp: t.Timestamp})
		}
		g.sendJSON(w, http.StatusOK, out)
	case http.MethodDelete:
		g.conversation.ClearSession(sessionID)
		w.WriteHeader(http.StatusNoContent)
	default:
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (g *Gateway) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := g.userIDParam(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)

	events, err := g.history.Events(r.Context(), userID, limit, offset)
	if err != nil {
		g.logger.Error("listing history failed", "user_id", userID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]historyEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse(e))
	}
	g.sendJSON(w, http.StatusOK, out)
}

func (g *Gateway) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := g.userIDParam(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)

	summaries, err := g.history.Summaries(r.Context(), userID, limit, offset)
	if err != nil {
		g.logger.Error("listing summaries failed", "user_id", userID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]summaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, summaryResponse{
			ID:          s.ID,
			CreatedAt:   s.CreatedAt,
			FromDate:    s.FromDate,
			ToDate:      s.ToDate,
			SummaryText: s.SummaryText,
			EventCount:  len(s.EventIDs),
		})
	}
	g.sendJSON(w, http.StatusOK, out)
}

func (g *Gateway) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, err := parseDate(req.FromDate)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid from_date")
		return
	}
	to, err := parseDate(req.ToDate)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid to_date")
		return
	}

	summary, err := g.history.SummarizePeriod(r.Context(), req.UserID, from, to)
	if err != nil {
		if errors.Is(err, history.ErrNothingToSummarize) {
			g.sendJSONError(w, http.StatusNotFound, "no history entries found in the specified date range")
			return
		}
		g.logger.Error("summarize failed", "user_id", req.UserID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.sendJSON(w, http.StatusOK, summaryResponse{
		ID:          summary.ID,
		CreatedAt:   summary.CreatedAt,
		FromDate:    summary.FromDate,
		ToDate:      summary.ToDate,
		SummaryText: summary.SummaryText,
		EventCount:  len(summary.EventIDs),
	})
}

func (g *Gateway) handleAppendEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req historyEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.EventType) == "" || strings.TrimSpace(req.Description) == "" {
		g.sendJSONError(w, http.StatusBadRequest, "event_type and description are required")
		return
	}

	event, err := g.history.AppendEvent(r.Context(), req.UserID, req.EventType, req.Description, req.AdditionalData)
	if err != nil {
		g.logger.Error("appending event failed", "user_id", req.UserID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.sendJSON(w, http.StatusCreated, eventResponse(event))
}

// handleAnalysis adapts the read-only analysis calls that share a
// (ctx, userID) -> string shape.
func (g *Gateway) handleAnalysis(fn func(context.Context, int64) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID, ok := g.userIDParam(w, r)
		if !ok {
			return
		}
		result, err := fn(r.Context(), userID)
		if err != nil {
			g.logger.Error("analysis failed", "path", r.URL.Path, "user_id", userID, "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		g.sendJSON(w, http.StatusOK, analysisResponse{Result: result})
	}
}

func (g *Gateway) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := g.analysis.Recommendations(r.Context(), req.UserID)
	if err != nil {
		g.logger.Error("recommendations failed", "user_id", req.UserID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	g.sendJSON(w, http.StatusOK, analysisResponse{Result: result})
}

func (g *Gateway) handleQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		g.sendJSONError(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := g.analysis.AskQuestion(r.Context(), req.UserID, req.Question)
	if err != nil {
		g.logger.Error("question failed", "user_id", req.UserID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	g.sendJSON(w, http.StatusOK, analysisResponse{Result: result})
}

func (g *Gateway) userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		g.sendJSONError(w, http.StatusBadRequest, "user_id is required")
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid user_id")
		return 0, false
	}
	return userID, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func eventResponse(e *store.HistoryEvent) historyEventResponse {
	return historyEventResponse{
		ID:             e.ID,
		Timestamp:      e.Timestamp,
		EventType:      e.EventType,
		Description:    e.Description,
		AdditionalData: e.AdditionalData,
	}
}

func (g *Gateway) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("encoding response failed", "error", err)
	}
}

func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
