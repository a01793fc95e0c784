package models

// AgentMode enumerates the agent's operation modes.
type AgentMode string

const (
	ModePassive        AgentMode = "passive"         // responds only when called
	ModeActive         AgentMode = "active"          // proactively monitors and assists
	ModeAutonomous     AgentMode = "autonomous"      // executes queued tasks independently
	ModeProjectManager AgentMode = "project_manager" // tracks commitments and deadlines
)

// Valid reports whether m is a known agent mode.
func (m AgentMode) Valid() bool {
	switch m {
	case ModePassive, ModeActive, ModeAutonomous, ModeProjectManager:
		return true
	}
	return false
}

// AgentTaskStatus enumerates autonomous task states.
type AgentTaskStatus string

const (
	AgentTaskPending   AgentTaskStatus = "pending"
	AgentTaskRunning   AgentTaskStatus = "running"
	AgentTaskCompleted AgentTaskStatus = "completed"
	AgentTaskFailed    AgentTaskStatus = "failed"
)

// AgentTask is an in-memory autonomous work item. Agent tasks are
// ephemeral and never persisted.
type AgentTask struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Priority    int             `json:"priority"`
	CreatedAt   string          `json:"created_at"`
	Status      AgentTaskStatus `json:"status"`
	Result      string          `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}
