package models

// Message roles used across the brain and providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single conversation message held in the brain's
// short-term history. Messages are ephemeral and never persisted.
type Message struct {
	Role     string         `json:"role"` // "user", "assistant", "system"
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// LLMResponse is the result of a single provider call.
type LLMResponse struct {
	Text       string         `json:"text"`
	Provider   string         `json:"provider"`
	Model      string         `json:"model"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
