package models

import "time"

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskPriority enumerates task priority levels.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Task is a single tracked task, optionally linked to an external platform.
type Task struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      TaskStatus     `json:"status"`
	Priority    TaskPriority   `json:"priority"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	DueDate     string         `json:"due_date,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Platform    string         `json:"platform,omitempty"`
	PlatformID  string         `json:"platform_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Project groups tasks by ID. No referential integrity is enforced
// beyond lookup: a project may reference a deleted task.
type Project struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	TaskIDs     []string       `json:"tasks"`
	Platform    string         `json:"platform,omitempty"`
	PlatformID  string         `json:"platform_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// TaskStats is an aggregate view over the task store.
type TaskStats struct {
	TotalTasks     int     `json:"total_tasks"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	Blocked        int     `json:"blocked"`
	Todo           int     `json:"todo"`
	Cancelled      int     `json:"cancelled"`
	TotalProjects  int     `json:"total_projects"`
	CompletionRate float64 `json:"completion_rate"`
}

// Now returns the current time formatted the way every persisted
// timestamp in the stores is written.
func Now() string {
	return time.Now().Format(time.RFC3339)
}
