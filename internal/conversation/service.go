// ABOUTME: Dispatcher folding agent responses into per-session transcripts
// ABOUTME: Registry misses are caller errors; provider failures become assistant turns

package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finbin/advisor-gateway/internal/agent"
	"github.com/finbin/advisor-gateway/internal/session"
)

// DefaultProviderTimeout bounds a single provider call, completion backend
// included. Expiry is treated as a provider failure, not a caller error.
const DefaultProviderTimeout = 60 * time.Second

// Service dispatches inbound messages to capability providers and records
// the exchange in the session store.
type Service struct {
	sessions     *session.Store
	registry     *agent.Registry
	defaultAgent string
	timeout      time.Duration
	logger       *slog.Logger
}

// New creates a dispatcher. The registry must be fully populated; it is
// not mutated after this point.
func New(sessions *session.Store, registry *agent.Registry, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:     sessions,
		registry:     registry,
		defaultAgent: agent.FinancialAdvisorName,
		timeout:      timeout,
		logger:       logger.With("component", "conversation"),
	}
}

// Dispatch routes a message to the named agent (or the default when the
// name is empty) and appends the user and assistant turns to the session.
//
// Two failure channels: an unknown agent name is a caller error returned
// as *agent.NotFoundError before anything is recorded. A provider failure
// is conversational: it is converted into an assistant turn so the session
// remains usable.
func (s *Service) Dispatch(ctx context.Context, sessionID string, userID int64, agentName, message string) (session.Turn, error) {
	if agentName == "" {
		agentName = s.defaultAgent
	}

	provider, err := s.registry.Get(agentName)
	if err != nil {
		return session.Turn{}, err
	}

	transcript := s.sessions.GetOrCreate(sessionID)
	transcript.Append(session.NewTurn(session.RoleUser, message))

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := provider.GenerateResponse(callCtx, userID, message)
	if err != nil {
		s.logger.Warn("provider failed, converting to assistant turn",
			"agent", agentName,
			"session_id", sessionID,
			"error", err)
		content = fmt.Sprintf("Sorry, I encountered an error: %v", err)
	}

	reply := session.NewTurn(session.RoleAssistant, content)
	transcript.Append(reply)

	s.logger.Debug("message dispatched",
		"agent", agentName,
		"session_id", sessionID,
		"user_id", userID)
	return reply, nil
}

// Transcript returns the ordered turns for a session, without creating it.
func (s *Service) Transcript(sessionID string) []session.Turn {
	return s.sessions.Get(sessionID)
}

// ClearSession discards a session's transcript. Idempotent.
func (s *Service) ClearSession(sessionID string) {
	s.sessions.Clear(sessionID)
}

// Agents returns the registered capability providers in registration order.
func (s *Service) Agents() []agent.Agent {
	return s.registry.List()
}
