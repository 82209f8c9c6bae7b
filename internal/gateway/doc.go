// Package gateway exposes the advisor services over an HTTP JSON API.
//
// # Overview
//
// The gateway owns the HTTP server and routes requests to the
// conversation dispatcher, the history service, and the analysis service.
// Request and response shapes live in api.go; the services hold all the
// semantics.
//
// # HTTP API
//
// Chat:
//
//   - POST /api/chat/send - Dispatch a message, returns the assistant turn
//   - GET /api/chat/agents - List registered agents
//   - GET /api/chat/history/{sessionID} - Ordered turns for a session
//   - DELETE /api/chat/history/{sessionID} - Discard a session (idempotent)
//
// History timeline:
//
//   - GET /api/history - Unsummarized events, newest first
//   - GET /api/history/summaries - Summaries, most recent period first
//   - POST /api/history/summarize - Summarize a date range on demand
//   - POST /api/history/events - Append a timeline event
//
// Analysis:
//
//   - GET /api/analysis/income|expenses|summary - Profile figures
//   - POST /api/analysis/recommendations - AI recommendations
//   - POST /api/analysis/question - Free-form question over the profile
//
// Liveness:
//
//   - GET /health
//
// # Identity
//
// Handlers take the acting user from a user_id field or query parameter.
// Errors are returned as {"error": "..."} with a meaningful status code;
// an unknown agent is a 404 listing what is registered.
package gateway
