// Package conversation provides the message dispatcher for the chat API.
//
// # Overview
//
// The conversation package sits between the HTTP handlers and the agent
// registry. It resolves the target agent, records the user's turn, invokes
// the provider under a timeout, and records the reply.
//
// # Service
//
// The Service coordinates a dispatch:
//
//	svc := conversation.New(sessions, registry, timeout, logger)
//	turn, err := svc.Dispatch(ctx, sessionID, userID, agentName, message)
//
// An empty agentName selects the default agent. Dispatch appends the user
// turn and exactly one assistant turn per call, in that order.
//
// # Failure Channels
//
// Dispatch distinguishes two kinds of failure:
//
//   - Unknown agent: returned to the caller as *agent.NotFoundError.
//     Nothing is recorded against the session.
//   - Provider failure (error or timeout): converted into an assistant
//     turn of the form "Sorry, I encountered an error: ...". The session
//     stays usable and the error is not returned.
//
// # Sessions
//
// Transcripts live in the in-memory session.Store for the process
// lifetime. Reading a transcript never creates a session; dispatching to
// an unseen session id does.
package conversation
