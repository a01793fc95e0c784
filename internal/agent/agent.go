// Package agent tracks how much initiative the companion takes, from
// answering only when spoken to up to executing queued work on its
// own.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"aegis/internal/brain"
	"aegis/internal/models"
	"aegis/internal/tasks"
)

// Thinker is the slice of the brain the agent needs for autonomous
// task execution.
type Thinker interface {
	Think(ctx context.Context, prompt string, opts brain.ThinkOptions) (*models.LLMResponse, error)
}

// Agent holds the current mode and the autonomous task queue.
type Agent struct {
	mu            sync.Mutex
	mode          models.AgentMode
	brain         Thinker
	tasks         *tasks.Manager
	queue         []*models.AgentTask
	modeCallbacks []func(old, new models.AgentMode)

	// lastPMCheck throttles project-manager interventions.
	lastPMCheck   time.Time
	checkInterval time.Duration

	now func() time.Time
}

// New builds an agent starting in passive mode.
func New(th Thinker, tm *tasks.Manager) *Agent {
	return &Agent{
		mode:          models.ModePassive,
		brain:         th,
		tasks:         tm,
		checkInterval: time.Hour,
		now:           time.Now,
	}
}

// Mode returns the current mode.
func (a *Agent) Mode() models.AgentMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// SetMode switches modes and notifies callbacks. Unknown modes are
// rejected.
func (a *Agent) SetMode(mode models.AgentMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown agent mode: %s", mode)
	}

	a.mu.Lock()
	old := a.mode
	a.mode = mode
	callbacks := make([]func(old, new models.AgentMode), len(a.modeCallbacks))
	copy(callbacks, a.modeCallbacks)
	a.mu.Unlock()

	if old != mode {
		log.Printf("🤖 [AGENT] Mode changed: %s → %s", old, mode)
		for _, cb := range callbacks {
			cb(old, mode)
		}
	}
	return nil
}

// OnModeChange registers a callback fired on every mode transition.
func (a *Agent) OnModeChange(cb func(old, new models.AgentMode)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.modeCallbacks = append(a.modeCallbacks, cb)
}

// ShouldIntervene decides whether the agent speaks up unprompted. In
// project-manager mode it nudges about urgent and blocked tasks at
// most once per check interval; in active mode it reacts to context
// flags. Passive and autonomous modes never intervene here.
func (a *Agent) ShouldIntervene(contextFlags map[string]bool) (bool, string) {
	a.mu.Lock()
	mode := a.mode
	a.mu.Unlock()

	switch mode {
	case models.ModeProjectManager:
		return a.projectManagerCheck()
	case models.ModeActive:
		if contextFlags["user_frustrated"] {
			return true, "You sound stuck. Want me to take a look?"
		}
		if contextFlags["long_silence"] {
			return true, "Still here if you need anything."
		}
	}
	return false, ""
}

func (a *Agent) projectManagerCheck() (bool, string) {
	a.mu.Lock()
	if a.now().Sub(a.lastPMCheck) < a.checkInterval {
		a.mu.Unlock()
		return false, ""
	}
	a.lastPMCheck = a.now()
	a.mu.Unlock()

	if a.tasks == nil {
		return false, ""
	}

	urgent := 0
	for _, t := range a.tasks.ListTasks(tasks.TaskFilter{}) {
		if t.Priority == models.PriorityUrgent && t.Status != models.TaskCompleted && t.Status != models.TaskCancelled {
			urgent++
		}
	}
	blocked := len(a.tasks.ListTasks(tasks.TaskFilter{Status: models.TaskBlocked}))

	switch {
	case urgent > 0 && blocked > 0:
		return true, fmt.Sprintf("Heads up: %d urgent and %d blocked tasks need attention.", urgent, blocked)
	case urgent > 0:
		return true, fmt.Sprintf("You have %d urgent tasks open.", urgent)
	case blocked > 0:
		return true, fmt.Sprintf("%d tasks are blocked. Want to unblock them?", blocked)
	}
	return false, ""
}

// QueueTask enqueues an autonomous work item and returns it.
func (a *Agent) QueueTask(description string, priority int) *models.AgentTask {
	task := &models.AgentTask{
		ID:          uuid.New().String(),
		Description: description,
		Priority:    priority,
		CreatedAt:   models.Now(),
		Status:      models.AgentTaskPending,
	}

	a.mu.Lock()
	a.queue = append(a.queue, task)
	a.mu.Unlock()

	log.Printf("🤖 [AGENT] Queued task: %s", description)
	return task
}

// ExecuteTask runs one queued task through the brain. Only allowed in
// autonomous mode.
func (a *Agent) ExecuteTask(ctx context.Context, id string) error {
	a.mu.Lock()
	if a.mode != models.ModeAutonomous {
		a.mu.Unlock()
		return fmt.Errorf("task execution requires autonomous mode (current: %s)", a.mode)
	}
	var task *models.AgentTask
	for _, t := range a.queue {
		if t.ID == id {
			task = t
			break
		}
	}
	if task == nil {
		a.mu.Unlock()
		return fmt.Errorf("unknown agent task: %s", id)
	}
	if task.Status != models.AgentTaskPending {
		a.mu.Unlock()
		return fmt.Errorf("agent task %s already %s", id, task.Status)
	}
	task.Status = models.AgentTaskRunning
	a.mu.Unlock()

	prompt := fmt.Sprintf("Execute this task on the user's behalf and report the outcome concisely: %s", task.Description)
	resp, err := a.brain.Think(ctx, prompt, brain.ThinkOptions{})

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		task.Status = models.AgentTaskFailed
		task.Error = err.Error()
		return fmt.Errorf("agent task failed: %w", err)
	}
	task.Status = models.AgentTaskCompleted
	task.Result = resp.Text
	return nil
}

// QueuedTasks returns a snapshot of the queue.
func (a *Agent) QueuedTasks() []models.AgentTask {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.AgentTask, 0, len(a.queue))
	for _, t := range a.queue {
		out = append(out, *t)
	}
	return out
}

// Capabilities describes what each mode permits.
func (a *Agent) Capabilities() map[models.AgentMode]string {
	return map[models.AgentMode]string{
		models.ModePassive:        "Responds when called. No background activity.",
		models.ModeActive:         "Monitors context and offers help proactively.",
		models.ModeAutonomous:     "Executes queued tasks without confirmation.",
		models.ModeProjectManager: "Tracks tasks and deadlines, nudges about urgent and blocked work.",
	}
}

// StatusSummary renders the agent state for the status endpoint and
// voice replies.
func (a *Agent) StatusSummary() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	pending, running, done, failed := 0, 0, 0, 0
	for _, t := range a.queue {
		switch t.Status {
		case models.AgentTaskPending:
			pending++
		case models.AgentTaskRunning:
			running++
		case models.AgentTaskCompleted:
			done++
		case models.AgentTaskFailed:
			failed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Agent mode: %s.", a.mode)
	if len(a.queue) > 0 {
		fmt.Fprintf(&b, " Queue: %d pending, %d running, %d completed, %d failed.", pending, running, done, failed)
	}
	return b.String()
}
