// ABOUTME: Capability provider interface and the immutable agent registry
// ABOUTME: Agents are registered once at startup and resolved by name at dispatch time

package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Agent is a named, pluggable responder. New agents are added by
// implementing this interface and registering them at startup; the
// dispatcher needs no changes.
type Agent interface {
	Name() string
	Description() string
	GenerateResponse(ctx context.Context, userID int64, message string) (string, error)
}

// Analyzer defines what agents need from the financial analysis layer.
type Analyzer interface {
	AnalyzeIncome(ctx context.Context, userID int64) (string, error)
	AnalyzeExpenses(ctx context.Context, userID int64) (string, error)
	AnalyzeSummary(ctx context.Context, userID int64) (string, error)
	CategorizeTransactions(ctx context.Context, userID int64) (string, error)
	Recommendations(ctx context.Context, userID int64) (string, error)
	AskQuestion(ctx context.Context, userID int64, question string) (string, error)
}

// NotFoundError is returned when a requested agent is not registered.
// It carries the registered names so callers can surface alternatives.
type NotFoundError struct {
	Name       string
	Registered []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent %q not found. Available agents: %s",
		e.Name, strings.Join(e.Registered, ", "))
}

// Registry maps agent names to agents. It is built once at startup and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	agents map[string]Agent
	order  []string
}

// NewRegistry builds a registry from the given agents. Names must be unique.
func NewRegistry(agents ...Agent) (*Registry, error) {
	r := &Registry{agents: make(map[string]Agent, len(agents))}
	for _, a := range agents {
		name := a.Name()
		if _, exists := r.agents[name]; exists {
			return nil, fmt.Errorf("duplicate agent name %q", name)
		}
		r.agents[name] = a
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get resolves an agent by name. Returns a *NotFoundError listing all
// registered names when the agent does not exist.
func (r *Registry) Get(name string) (Agent, error) {
	if a, ok := r.agents[name]; ok {
		return a, nil
	}
	registered := make([]string, len(r.order))
	copy(registered, r.order)
	sort.Strings(registered)
	return nil, &NotFoundError{Name: name, Registered: registered}
}

// List returns the registered agents in registration order.
func (r *Registry) List() []Agent {
	out := make([]Agent, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.agents[name])
	}
	return out
}
