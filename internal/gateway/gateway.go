// ABOUTME: HTTP server wiring for advisor-gateway
// ABOUTME: Owns the mux, server lifecycle, and graceful shutdown

package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/finbin/advisor-gateway/internal/analysis"
	"github.com/finbin/advisor-gateway/internal/conversation"
	"github.com/finbin/advisor-gateway/internal/history"
)

// Gateway exposes the conversation, history, and analysis services over
// an HTTP JSON API.
type Gateway struct {
	conversation *conversation.Service
	history      *history.Service
	analysis     *analysis.Service
	httpServer   *http.Server
	logger       *slog.Logger
}

// New creates a Gateway serving on addr.
func New(addr string, conv *conversation.Service, hist *history.Service, anal *analysis.Service, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		conversation: conv,
		history:      hist,
		analysis:     anal,
		logger:       logger.With("component", "gateway"),
	}
	g.httpServer = &http.Server{
		Addr:              addr,
		Handler:           g.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

// routes builds the HTTP mux.
func (g *Gateway) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat/send", g.handleSendMessage)
	mux.HandleFunc("/api/chat/agents", g.handleListAgents)
	mux.HandleFunc("/api/chat/history/", g.handleSessionHistory)

	mux.HandleFunc("/api/history", g.handleListHistory)
	mux.HandleFunc("/api/history/summaries", g.handleListSummaries)
	mux.HandleFunc("/api/history/summarize", g.handleSummarize)
	mux.HandleFunc("/api/history/events", g.handleAppendEvent)

	mux.HandleFunc("/api/analysis/income", g.handleAnalysis(g.analysis.AnalyzeIncome))
	mux.HandleFunc("/api/analysis/expenses", g.handleAnalysis(g.analysis.AnalyzeExpenses))
	mux.HandleFunc("/api/analysis/summary", g.handleAnalysis(g.analysis.AnalyzeSummary))
	mux.HandleFunc("/api/analysis/recommendations", g.handleRecommendations)
	mux.HandleFunc("/api/analysis/question", g.handleQuestion)

	mux.HandleFunc("/health", g.handleHealth)

	return mux
}

// Handler returns the gateway's HTTP handler; used by tests.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", g.httpServer.Addr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return g.httpServer.Shutdown(shutdownCtx)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
