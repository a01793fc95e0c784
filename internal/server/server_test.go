package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"aegis/internal/agent"
	"aegis/internal/brain"
	"aegis/internal/connectors"
	"aegis/internal/models"
	"aegis/internal/tasks"
)

type fakeBrain struct {
	reply string
	fail  bool
}

func (f *fakeBrain) Think(_ context.Context, _ string, _ brain.ThinkOptions) (*models.LLMResponse, error) {
	if f.fail {
		return nil, fmt.Errorf("scripted failure")
	}
	return &models.LLMResponse{Text: f.reply, Provider: "openai"}, nil
}

func (f *fakeBrain) Available() bool { return !f.fail }

var platformEnvVars = []string{
	"TASKADE_API_KEY", "YOUTUBE_API_KEY", "FACEBOOK_ACCESS_TOKEN", "STRIPE_API_KEY",
	"SHOPIFY_ACCESS_TOKEN", "GITHUB_TOKEN", "GMAIL_API_KEY", "OPENAI_API_KEY",
	"AWS_ACCESS_KEY", "CAPCUT_API_KEY", "CANVA_API_KEY", "REPLIT_API_KEY",
}

func newTestServer(t *testing.T) (*Server, *fakeBrain) {
	t.Helper()
	for _, v := range platformEnvVars {
		t.Setenv(v, "")
	}
	dir := t.TempDir()

	tm, err := tasks.NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	reg, err := connectors.NewRegistry(dir)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	fb := &fakeBrain{reply: "hello from the brain"}
	s := New(Config{
		Port:       0,
		Brain:      fb,
		Agent:      agent.New(fb, tm),
		Tasks:      tm,
		Connectors: reg,
	})
	return s, fb
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	app := s.buildApp()

	resp, err := app.Test(newRequest(t, "GET", "/health", ""))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	body := decode(t, resp)
	if body["status"] != "healthy" || body["brain_available"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t)
	s.tasks.CreateTask(models.Task{Title: "x"})
	s.connectors.Add(models.ConnectorConfig{Name: "github", URL: "https://api.github.com"})
	app := s.buildApp()

	resp, err := app.Test(newRequest(t, "GET", "/api/status", ""))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	body := decode(t, resp)
	if body["agent_mode"] != "passive" {
		t.Errorf("agent_mode = %v", body["agent_mode"])
	}
	stats := body["task_stats"].(map[string]any)
	if stats["total_tasks"].(float64) != 1 {
		t.Errorf("task_stats = %v", stats)
	}
	conns := body["connectors"].([]any)
	if len(conns) != 1 || conns[0] != "github" {
		t.Errorf("connectors = %v", conns)
	}
}

func TestTasksEndpointFilters(t *testing.T) {
	s, _ := newTestServer(t)
	s.tasks.CreateTask(models.Task{Title: "open one"})
	s.tasks.CreateTask(models.Task{Title: "done one", Status: models.TaskCompleted})
	app := s.buildApp()

	resp, err := app.Test(newRequest(t, "GET", "/api/tasks?status=completed", ""))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	body := decode(t, resp)
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v", body["count"])
	}
}

func TestChat(t *testing.T) {
	s, fb := newTestServer(t)
	app := s.buildApp()

	resp, err := app.Test(newRequest(t, "POST", "/api/chat", `{"message":"hi"}`))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	body := decode(t, resp)
	if body["reply"] != "hello from the brain" || body["provider"] != "openai" {
		t.Errorf("body = %v", body)
	}

	// Missing message is a 400.
	resp, err = app.Test(newRequest(t, "POST", "/api/chat", `{}`))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Brain failure is a 503.
	fb.fail = true
	resp, err = app.Test(newRequest(t, "POST", "/api/chat", `{"message":"hi"}`))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestWSRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t)
	app := s.buildApp()

	resp, err := app.Test(newRequest(t, "GET", "/ws", ""))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
	resp.Body.Close()
}

func newRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, rd)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}
