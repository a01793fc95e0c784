package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"aegis/internal/agent"
	"aegis/internal/brain"
	"aegis/internal/config"
	"aegis/internal/connectors"
	"aegis/internal/knowledge"
	"aegis/internal/memory"
	"aegis/internal/models"
	"aegis/internal/tasks"
)

type fakeBrain struct {
	mu       sync.Mutex
	reply    string
	fail     bool
	prompts  []string
	trinitys []string
}

func (f *fakeBrain) Think(_ context.Context, prompt string, _ brain.ThinkOptions) (*models.LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.fail {
		return nil, fmt.Errorf("scripted failure")
	}
	return &models.LLMResponse{Text: f.reply}, nil
}

func (f *fakeBrain) TrinityMode(_ context.Context, prompt string) (*models.LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trinitys = append(f.trinitys, prompt)
	if f.fail {
		return nil, fmt.Errorf("scripted failure")
	}
	return &models.LLMResponse{Text: "council says: " + f.reply}, nil
}

func (f *fakeBrain) Available() bool { return !f.fail }

type fakeSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return true
}

func (f *fakeSpeaker) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

type fixture struct {
	o       *Orchestrator
	brain   *fakeBrain
	speaker *fakeSpeaker
	memory  *memory.Store
	tasks   *tasks.Manager
	agent   *agent.Agent
}

// platformEnvVars mirrors the connector auto-population list; blanked
// so developer machines with real keys get a clean registry.
var platformEnvVars = []string{
	"TASKADE_API_KEY", "YOUTUBE_API_KEY", "FACEBOOK_ACCESS_TOKEN", "STRIPE_API_KEY",
	"SHOPIFY_ACCESS_TOKEN", "GITHUB_TOKEN", "GMAIL_API_KEY", "OPENAI_API_KEY",
	"AWS_ACCESS_KEY", "CAPCUT_API_KEY", "CANVA_API_KEY", "REPLIT_API_KEY",
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	for _, v := range platformEnvVars {
		t.Setenv(v, "")
	}
	dir := t.TempDir()

	mem, err := memory.NewStore(dir, "Tester")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	tm, err := tasks.NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	reg, err := connectors.NewRegistry(dir)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	fb := &fakeBrain{reply: "thoughtful answer"}
	fs := &fakeSpeaker{}
	ag := agent.New(fb, tm)

	o := New(Config{
		Persona:    config.DefaultPersona(),
		Brain:      fb,
		Speaker:    fs,
		Memory:     mem,
		Tasks:      tm,
		Connectors: reg,
		Agent:      ag,
	})
	return &fixture{o: o, brain: fb, speaker: fs, memory: mem, tasks: tm, agent: ag}
}

func TestCreateTaskWithTitle(t *testing.T) {
	f := newFixture(t)

	resp := f.o.HandleCommand(context.Background(), "create a task to buy groceries")
	if !strings.Contains(resp, "buy groceries") {
		t.Fatalf("resp = %q", resp)
	}

	list := f.tasks.ListTasks(tasks.TaskFilter{})
	if len(list) != 1 {
		t.Fatalf("tasks = %d", len(list))
	}
	task := list[0]
	if task.Status != models.TaskTodo || task.Priority != models.PriorityMedium {
		t.Errorf("task = %+v", task)
	}
	if len(task.Tags) != 1 || task.Tags[0] != "voice-created" {
		t.Errorf("tags = %v", task.Tags)
	}
	// No brain call for a routed command.
	if len(f.brain.prompts) != 0 {
		t.Error("routed command reached the brain")
	}
}

func TestCreateTaskTitleFollowUp(t *testing.T) {
	f := newFixture(t)

	resp := f.o.HandleCommand(context.Background(), "create task")
	if !strings.Contains(strings.ToLower(resp), "call the task") {
		t.Fatalf("no title prompt: %q", resp)
	}
	if len(f.tasks.ListTasks(tasks.TaskFilter{})) != 0 {
		t.Fatal("task created without a title")
	}

	// Next phrase is taken as the title.
	resp = f.o.HandleCommand(context.Background(), "Buy groceries")
	if !strings.Contains(resp, "Buy groceries") {
		t.Fatalf("resp = %q", resp)
	}
	list := f.tasks.ListTasks(tasks.TaskFilter{})
	if len(list) != 1 || list[0].Title != "Buy groceries" {
		t.Fatalf("tasks = %+v", list)
	}

	// Interaction recorded with the task_management mode.
	sum := f.memory.DailySummary()
	if sum.InteractionCount != 1 {
		t.Fatalf("interactions = %d", sum.InteractionCount)
	}
}

func TestListTasks(t *testing.T) {
	f := newFixture(t)

	resp := f.o.HandleCommand(context.Background(), "list my tasks")
	if !strings.Contains(resp, "no tasks") {
		t.Fatalf("resp = %q", resp)
	}

	f.tasks.CreateTask(models.Task{Title: "alpha"})
	f.tasks.CreateTask(models.Task{Title: "beta", Status: models.TaskCompleted})

	resp = f.o.HandleCommand(context.Background(), "show tasks")
	if !strings.Contains(resp, "2 tasks") || !strings.Contains(resp, "alpha") {
		t.Fatalf("resp = %q", resp)
	}
}

func TestAgentModeCommand(t *testing.T) {
	f := newFixture(t)

	resp := f.o.HandleCommand(context.Background(), "agent mode autonomous")
	if !strings.Contains(resp, "autonomous") {
		t.Fatalf("resp = %q", resp)
	}
	if f.agent.Mode() != models.ModeAutonomous {
		t.Errorf("mode = %s", f.agent.Mode())
	}

	// No mode word reports the current mode.
	resp = f.o.HandleCommand(context.Background(), "agent mode")
	if !strings.Contains(resp, "autonomous") {
		t.Fatalf("resp = %q", resp)
	}
}

func TestInterfaceCommand(t *testing.T) {
	f := newFixture(t)

	started := 0
	f.o.StartInterface = func() error { started++; return nil }

	resp := f.o.HandleCommand(context.Background(), "show interface")
	if started != 1 || !strings.Contains(resp, "Interface") {
		t.Fatalf("started=%d resp=%q", started, resp)
	}

	// "project manager" opens the view and switches the agent mode.
	f.o.HandleCommand(context.Background(), "open the project manager")
	if f.agent.Mode() != models.ModeProjectManager {
		t.Errorf("mode = %s", f.agent.Mode())
	}
	if started != 2 {
		t.Errorf("started = %d", started)
	}
}

func TestConnectorCommands(t *testing.T) {
	f := newFixture(t)

	resp := f.o.HandleCommand(context.Background(), "list connectors")
	if !strings.Contains(resp, "No connectors") {
		t.Fatalf("resp = %q", resp)
	}

	f.o.connectors.Add(models.ConnectorConfig{Name: "github", URL: "https://api.github.com"})
	resp = f.o.HandleCommand(context.Background(), "show connectors")
	if !strings.Contains(resp, "github") {
		t.Fatalf("resp = %q", resp)
	}

	resp = f.o.HandleCommand(context.Background(), "add connector github")
	if !strings.Contains(resp, "already configured") {
		t.Fatalf("resp = %q", resp)
	}
}

func TestConversationFallThrough(t *testing.T) {
	f := newFixture(t)

	resp := f.o.HandleCommand(context.Background(), "how are you feeling today")
	if resp != "thoughtful answer" {
		t.Fatalf("resp = %q", resp)
	}

	if len(f.brain.prompts) != 1 {
		t.Fatalf("brain calls = %d", len(f.brain.prompts))
	}
	prompt := f.brain.prompts[0]
	// Assembled context rides along with the command.
	if !strings.Contains(prompt, "USER CONTEXT") {
		t.Error("prompt missing user context")
	}
	if !strings.Contains(prompt, "how are you feeling today") {
		t.Error("prompt missing the command")
	}

	sum := f.memory.DailySummary()
	if sum.InteractionCount != 1 {
		t.Fatalf("interactions = %d", sum.InteractionCount)
	}
}

func TestConversationModeIsDetectedDomain(t *testing.T) {
	f := newFixture(t)

	f.o.HandleCommand(context.Background(), "please debug this function in my code")
	f.o.HandleCommand(context.Background(), "lovely weather today")

	sum := f.memory.DailySummary()
	hasCoding, hasConversation := false, false
	for _, m := range sum.ModesUsed {
		if m == "coding" {
			hasCoding = true
		}
		if m == "conversation" {
			hasConversation = true
		}
	}
	if !hasCoding || !hasConversation {
		t.Errorf("modes = %v", sum.ModesUsed)
	}
}

func TestBrainFailureApology(t *testing.T) {
	f := newFixture(t)
	f.brain.fail = true

	resp := f.o.HandleCommand(context.Background(), "tell me something")
	if resp != apology {
		t.Fatalf("resp = %q", resp)
	}
	// Failed turns are not recorded.
	if f.memory.DailySummary().InteractionCount != 0 {
		t.Error("failed turn recorded as interaction")
	}
	// One attempt, no retry.
	if len(f.brain.prompts) != 1 {
		t.Errorf("brain calls = %d, want 1", len(f.brain.prompts))
	}
}

func TestTrinityCommand(t *testing.T) {
	f := newFixture(t)

	resp := f.o.HandleCommand(context.Background(), "trinity what should I do with my life")
	if !strings.Contains(resp, "council says") {
		t.Fatalf("resp = %q", resp)
	}
	if len(f.brain.trinitys) != 1 {
		t.Errorf("trinity calls = %d", len(f.brain.trinitys))
	}

	if resp := f.o.HandleCommand(context.Background(), "trinity"); !strings.Contains(resp, "question") {
		t.Errorf("bare trinity = %q", resp)
	}
}

func TestHandleWakeAcknowledgment(t *testing.T) {
	f := newFixture(t)

	f.o.HandleWake(context.Background(), "hey aegis")
	spoken := f.speaker.all()
	if len(spoken) != 1 {
		t.Fatalf("spoken = %v", spoken)
	}
	found := false
	for _, ack := range config.DefaultPersona().Acknowledgments {
		if spoken[0] == ack {
			found = true
		}
	}
	if !found {
		t.Errorf("unexpected acknowledgment %q", spoken[0])
	}
}

func TestHandleWakeSpeaksResponse(t *testing.T) {
	f := newFixture(t)

	f.o.HandleWake(context.Background(), "aegis how are you")
	spoken := f.speaker.all()
	if len(spoken) != 1 || spoken[0] != "thoughtful answer" {
		t.Fatalf("spoken = %v", spoken)
	}
}

func TestReentrantWakeDropped(t *testing.T) {
	f := newFixture(t)

	// Simulate a command in flight.
	f.o.mu.Lock()
	f.o.processing = true
	f.o.mu.Unlock()

	f.o.HandleWake(context.Background(), "aegis hello")
	if len(f.speaker.all()) != 0 {
		t.Error("re-entrant wake was handled")
	}
}

func TestContextCacheReused(t *testing.T) {
	f := newFixture(t)

	first := f.o.assembleContext("same question")
	f.memory.AddInterest("newly added interest")
	second := f.o.assembleContext("same question")
	if first != second {
		t.Error("cache miss for identical query")
	}

	// Expired entries rebuild.
	f.o.contextCache.Set("same question", first, time.Nanosecond)
	time.Sleep(time.Millisecond)
	third := f.o.assembleContext("same question")
	if !strings.Contains(third, "newly added interest") {
		t.Error("rebuilt context missing new state")
	}
}

func TestContextCapsKnowledgeEntries(t *testing.T) {
	f := newFixture(t)

	kb, err := knowledge.NewBase(t.TempDir())
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	for i := 0; i < 5; i++ {
		kb.AddEntry(fmt.Sprintf("deploy note %d", i), "gateway rollout checklist", "ops", nil, "", 5, nil)
	}
	f.o.kb = kb

	ctx := f.o.assembleContext("gateway rollout")
	if got := strings.Count(ctx, "deploy note"); got != 3 {
		t.Errorf("knowledge entries in context = %d, want 3", got)
	}
}
