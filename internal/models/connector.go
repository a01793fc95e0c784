package models

// AuthType selects how a connector presents its credential.
type AuthType string

const (
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthAPIKey AuthType = "api-key"
	AuthCustom AuthType = "custom"
)

// ConnectorConfig is one named HTTP client configuration for a
// third-party platform. Configs are persisted as plain JSON; the API
// key is stored as-is (single-user local file).
type ConnectorConfig struct {
	Name          string            `json:"name"`
	URL           string            `json:"url"`
	APIKey        string            `json:"api_key,omitempty"`
	AuthType      AuthType          `json:"auth_type"`
	CustomHeaders map[string]string `json:"custom_headers,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}
