// ABOUTME: Completion collaborator contract used by classifiers, agents, and compaction
// ABOUTME: Defines the Message/Role types and the Client interface

package completion

import "context"

// Role identifies the author of a message in a completion request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in an ordered completion request.
type Message struct {
	Role    Role
	Content string
}

// Client produces the next turn's text for an ordered list of prior turns.
// Implementations may fail or time out; callers are expected to catch those
// failures at the provider or classifier boundary.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// System is a convenience constructor for a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User is a convenience constructor for a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
