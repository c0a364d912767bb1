package chat

// Turn roles match the chat-completions wire format.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry in a conversation: a user message or the assistant's
// reply. Turns are append-only within a session.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
