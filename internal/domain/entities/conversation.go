package entities

// Conversation roles as supplied by the frontend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one prior message in a chat session, supplied by the
// caller per request. The backend holds no session state of its own.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound chat payload.
type ChatRequest struct {
	Message string             `json:"message"`
	History []ConversationTurn `json:"history,omitempty"`
}

// ChatResponse is the outbound chat payload. Error carries a machine-readable
// signal when response generation failed; Response still holds a user-facing
// apology in that case.
type ChatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}
