// Package orchestrator is the command router: it takes a wake-word
// transcript, dispatches known command phrases to their handlers, and
// sends everything else through the brain with assembled context.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"aegis/internal/agent"
	"aegis/internal/brain"
	"aegis/internal/config"
	"aegis/internal/connectors"
	"aegis/internal/knowledge"
	"aegis/internal/listener"
	"aegis/internal/memory"
	"aegis/internal/metrics"
	"aegis/internal/models"
	"aegis/internal/tasks"
)

const apology = "I'm sorry, I'm having trouble thinking right now. Give me a moment and try again."

// Thinker is the slice of the brain the orchestrator needs.
type Thinker interface {
	Think(ctx context.Context, prompt string, opts brain.ThinkOptions) (*models.LLMResponse, error)
	TrinityMode(ctx context.Context, prompt string) (*models.LLMResponse, error)
	Available() bool
}

// Speaker voices a response. Satisfied by *voice.Speaker.
type Speaker interface {
	Speak(ctx context.Context, text string) bool
}

// Orchestrator wires every subsystem behind the voice loop.
type Orchestrator struct {
	persona    *config.Persona
	brain      Thinker
	speaker    Speaker
	memory     *memory.Store
	tasks      *tasks.Manager
	kb         *knowledge.Base
	connectors *connectors.Registry
	agent      *agent.Agent

	// StartInterface launches the companion HTTP interface on demand.
	StartInterface func() error

	// contextCache holds assembled prompt context keyed by the raw
	// command. Routing never consults it; only the composite prompt
	// body does.
	contextCache *gocache.Cache

	mu         sync.Mutex
	processing bool
	pending    string // follow-up state, e.g. awaiting a task title
}

// Config wires an orchestrator.
type Config struct {
	Persona    *config.Persona
	Brain      Thinker
	Speaker    Speaker
	Memory     *memory.Store
	Tasks      *tasks.Manager
	Knowledge  *knowledge.Base
	Connectors *connectors.Registry
	Agent      *agent.Agent
}

// New builds the orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		persona:      cfg.Persona,
		brain:        cfg.Brain,
		speaker:      cfg.Speaker,
		memory:       cfg.Memory,
		tasks:        cfg.Tasks,
		kb:           cfg.Knowledge,
		connectors:   cfg.Connectors,
		agent:        cfg.Agent,
		contextCache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// HandleWake processes one wake-word transcript. Re-entrant calls
// while a command is still being handled are dropped; the listener
// keeps running but the companion finishes one thought at a time.
func (o *Orchestrator) HandleWake(ctx context.Context, transcript string) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		log.Printf("🎯 [ORCHESTRATOR] Busy, ignoring wake: %q", transcript)
		return
	}
	o.processing = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.processing = false
		o.mu.Unlock()
	}()

	metrics.WakeDetections.Inc()
	command := listener.ExtractCommand(transcript, o.persona.WakeWords)
	if command == "" {
		o.speak(ctx, o.acknowledgment())
		return
	}

	start := time.Now()
	response := o.HandleCommand(ctx, command)
	metrics.CommandDuration.Observe(time.Since(start).Seconds())

	if response != "" {
		o.speak(ctx, response)
	}
}

// HandleCommand routes a command and returns the response text. Known
// command phrases are checked in order; the first match wins. Anything
// unmatched becomes a conversation turn.
func (o *Orchestrator) HandleCommand(ctx context.Context, command string) string {
	lower := strings.ToLower(command)

	if pending := o.takePending(); pending != "" {
		switch pending {
		case "task_title":
			return o.createTask(command)
		}
	}

	switch {
	case containsAny(lower, "create", "new", "add") && strings.Contains(lower, "task"):
		metrics.CommandsHandled.WithLabelValues("create_task").Inc()
		return o.handleCreateTask(command, lower)

	case containsAny(lower, "list", "show", "what are") && strings.Contains(lower, "task"):
		metrics.CommandsHandled.WithLabelValues("list_tasks").Inc()
		return o.handleListTasks()

	case strings.Contains(lower, "agent mode"):
		metrics.CommandsHandled.WithLabelValues("agent_mode").Inc()
		return o.handleAgentMode(lower)

	case containsAny(lower, "show interface", "open interface", "project manager"):
		metrics.CommandsHandled.WithLabelValues("interface").Inc()
		return o.handleInterface(lower)

	case containsAny(lower, "add connector", "connect to"):
		metrics.CommandsHandled.WithLabelValues("add_connector").Inc()
		return o.handleAddConnector(lower)

	case containsAny(lower, "list connectors", "show connectors"):
		metrics.CommandsHandled.WithLabelValues("list_connectors").Inc()
		return o.handleListConnectors()

	case strings.Contains(lower, "trinity"):
		metrics.CommandsHandled.WithLabelValues("trinity").Inc()
		return o.handleTrinity(ctx, command)
	}

	metrics.CommandsHandled.WithLabelValues("conversation").Inc()
	return o.converse(ctx, command)
}

func (o *Orchestrator) speak(ctx context.Context, text string) {
	if o.speaker != nil {
		o.speaker.Speak(ctx, text)
	}
}

func (o *Orchestrator) acknowledgment() string {
	acks := o.persona.Acknowledgments
	if len(acks) == 0 {
		return "Yes?"
	}
	return acks[rand.Intn(len(acks))]
}

func (o *Orchestrator) takePending() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.pending
	o.pending = ""
	return p
}

func (o *Orchestrator) setPending(p string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = p
}

// handleCreateTask extracts a title from the command; without one it
// asks for the title and parks the conversation until the next phrase.
func (o *Orchestrator) handleCreateTask(command, lower string) string {
	title := extractTaskTitle(command, lower)
	if title == "" {
		o.setPending("task_title")
		return "What should I call the task?"
	}
	return o.createTask(title)
}

func (o *Orchestrator) createTask(title string) string {
	task := o.tasks.CreateTask(models.Task{
		Title: title,
		Tags:  []string{"voice-created"},
	})
	o.memory.RecordInteraction("create task: "+title, "Task created: "+task.Title, "task_management", []string{"tasks"}, "")
	return fmt.Sprintf("Task created: %s.", task.Title)
}

// extractTaskTitle returns the text after the word "task", minus the
// connective filler people say out loud.
func extractTaskTitle(command, lower string) string {
	idx := strings.Index(lower, "task")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(command[idx+len("task"):])
	restLower := strings.ToLower(rest)
	for _, prefix := range []string{"to ", "called ", "for ", "about ", ": "} {
		if strings.HasPrefix(restLower, prefix) {
			rest = strings.TrimSpace(rest[len(prefix):])
			break
		}
	}
	return strings.Trim(rest, ",.?! ")
}

func (o *Orchestrator) handleListTasks() string {
	stats := o.tasks.Stats()
	if stats.TotalTasks == 0 {
		return "You have no tasks right now."
	}

	open := stats.Todo + stats.InProgress + stats.Blocked
	msg := fmt.Sprintf("You have %d tasks: %d open, %d completed.", stats.TotalTasks, open, stats.Completed)
	if stats.Blocked > 0 {
		msg += fmt.Sprintf(" %d are blocked.", stats.Blocked)
	}

	names := make([]string, 0, 3)
	for _, t := range o.tasks.ListTasks(tasks.TaskFilter{Status: models.TaskTodo}) {
		names = append(names, t.Title)
		if len(names) == 3 {
			break
		}
	}
	if len(names) > 0 {
		msg += " Next up: " + strings.Join(names, ", ") + "."
	}
	return msg
}

func (o *Orchestrator) handleAgentMode(lower string) string {
	var mode models.AgentMode
	switch {
	case strings.Contains(lower, "passive"):
		mode = models.ModePassive
	case strings.Contains(lower, "active"):
		mode = models.ModeActive
	case strings.Contains(lower, "autonomous"):
		mode = models.ModeAutonomous
	case strings.Contains(lower, "project"):
		mode = models.ModeProjectManager
	default:
		return fmt.Sprintf("Current agent mode is %s. Say passive, active, autonomous or project manager to change it.", o.agent.Mode())
	}

	if err := o.agent.SetMode(mode); err != nil {
		return "I couldn't switch modes: " + err.Error()
	}
	return fmt.Sprintf("Agent mode set to %s.", mode)
}

func (o *Orchestrator) handleInterface(lower string) string {
	// "project manager" doubles as a mode switch plus opening the view.
	if strings.Contains(lower, "project manager") {
		o.agent.SetMode(models.ModeProjectManager)
	}
	if o.StartInterface == nil {
		return "The interface isn't available right now."
	}
	if err := o.StartInterface(); err != nil {
		log.Printf("⚠️ [ORCHESTRATOR] Interface start failed: %v", err)
		return "I couldn't open the interface."
	}
	return "Interface is up. Check your browser."
}

func (o *Orchestrator) handleAddConnector(lower string) string {
	for _, c := range o.connectors.List() {
		if strings.Contains(lower, c.Name) {
			return fmt.Sprintf("The %s connector is already configured.", c.Name)
		}
	}
	return "To add a connector, set its API key in the environment and restart me, or use the interface."
}

func (o *Orchestrator) handleListConnectors() string {
	list := o.connectors.List()
	if len(list) == 0 {
		return "No connectors configured yet."
	}
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return fmt.Sprintf("You have %d connectors: %s.", len(list), strings.Join(names, ", "))
}

func (o *Orchestrator) handleTrinity(ctx context.Context, command string) string {
	question := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(command), "trinity", ""))
	if question == "" {
		return "Trinity mode needs a question to put to the council."
	}

	resp, err := o.brain.TrinityMode(ctx, command)
	if err != nil {
		log.Printf("⚠️ [ORCHESTRATOR] Trinity failed: %v", err)
		return apology
	}
	o.memory.RecordInteraction(command, resp.Text, "trinity", nil, "")
	return resp.Text
}

// converse sends a free-form command through the brain with assembled
// context.
func (o *Orchestrator) converse(ctx context.Context, command string) string {
	metrics.ChatRequests.WithLabelValues("voice").Inc()

	prompt := o.assembleContext(command) + "\n\nUser said: " + command
	resp, err := o.brain.Think(ctx, prompt, brain.ThinkOptions{})
	if err != nil {
		log.Printf("⚠️ [ORCHESTRATOR] Brain failed: %v", err)
		return apology
	}

	mode := knowledge.DetectDomain(command)
	if mode == "" {
		mode = "conversation"
	}
	o.memory.RecordInteraction(command, resp.Text, mode, nil, "")
	return resp.Text
}

// assembleContext gathers the knowledge and memory context for a
// query. Results are cached per raw command for a few minutes; the
// cache only short-circuits this assembly, never the routing above it.
func (o *Orchestrator) assembleContext(query string) string {
	if cached, ok := o.contextCache.Get(query); ok {
		return cached.(string)
	}

	parts := []string{
		knowledge.CodexContext(query),
		knowledge.ShrineContext(query),
		knowledge.RoleContext(query),
	}
	if o.kb != nil {
		if kbCtx := o.kb.ContextForQuery(query, 3); kbCtx != "" {
			parts = append(parts, kbCtx)
		}
	}
	parts = append(parts, o.memory.UserContext())

	assembled := strings.Join(parts, "\n")
	o.contextCache.Set(query, assembled, gocache.DefaultExpiration)
	return assembled
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
