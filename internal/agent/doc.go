// Package agent defines capability providers and their registry.
//
// # Agents
//
// An Agent answers one message for one user:
//
//	type Agent interface {
//	    Name() string
//	    Description() string
//	    GenerateResponse(ctx context.Context, userID int64, message string) (string, error)
//	}
//
// Two providers ship with the gateway:
//
//   - FinancialAdvisor: classifies the message into a query category and
//     routes it to the matching analysis operation. The default agent.
//   - BudgetAnalyst: keyword-routed budget specialist; falls back to a
//     budget-optimization chat for everything else.
//
// # Registry
//
// The Registry is built once at startup and read-only afterward:
//
//	registry, err := agent.NewRegistry(advisor, analyst)
//
// Lookup of an unregistered name returns *NotFoundError carrying the
// sorted list of registered names, so callers can surface what is
// available.
package agent
