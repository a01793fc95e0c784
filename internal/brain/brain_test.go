package brain

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"aegis/internal/models"
)

// fakeProvider scripts responses and records the histories it saw.
type fakeProvider struct {
	name      string
	available bool
	fail      bool
	reply     string
	seen      [][]models.Message
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Complete(_ context.Context, messages []models.Message) (*models.LLMResponse, error) {
	cp := make([]models.Message, len(messages))
	copy(cp, messages)
	f.seen = append(f.seen, cp)
	if f.fail {
		return nil, fmt.Errorf("scripted failure")
	}
	return &models.LLMResponse{Text: f.reply, Provider: f.name}, nil
}

func TestThinkFallbackOrder(t *testing.T) {
	p1 := &fakeProvider{name: "openai", available: true, fail: true}
	p2 := &fakeProvider{name: "anthropic", available: false, reply: "skip me"}
	p3 := &fakeProvider{name: "gemini", available: true, reply: "from gemini"}
	b := New("You are a test.", p1, p2, p3)

	resp, err := b.Think(context.Background(), "hello", ThinkOptions{})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if resp.Provider != "gemini" || resp.Text != "from gemini" {
		t.Errorf("resp = %+v", resp)
	}
	if len(p1.seen) != 1 {
		t.Errorf("openai attempts = %d, want 1", len(p1.seen))
	}
	if len(p2.seen) != 0 {
		t.Error("unavailable provider was called")
	}

	h := b.History()
	if len(h) != 2 || h[0].Role != models.RoleUser || h[1].Role != models.RoleAssistant {
		t.Fatalf("history = %+v", h)
	}
}

func TestThinkPopsPromptOnTotalFailure(t *testing.T) {
	p := &fakeProvider{name: "openai", available: true, fail: true}
	b := New("", p)

	if _, err := b.Think(context.Background(), "hello", ThinkOptions{}); err == nil {
		t.Fatal("expected error when all providers fail")
	}
	if len(b.History()) != 0 {
		t.Fatalf("failed turn left history: %+v", b.History())
	}
}

func TestThinkForcedProvider(t *testing.T) {
	p1 := &fakeProvider{name: "openai", available: true, reply: "primary"}
	p2 := &fakeProvider{name: "gemini", available: true, reply: "forced"}
	b := New("", p1, p2)

	resp, err := b.Think(context.Background(), "q", ThinkOptions{Provider: "gemini"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if resp.Provider != "gemini" {
		t.Errorf("Provider = %q", resp.Provider)
	}
	if len(p1.seen) != 0 {
		t.Error("primary provider called despite forced choice")
	}

	if _, err := b.Think(context.Background(), "q", ThinkOptions{Provider: "nope"}); err == nil {
		t.Error("expected error for unknown forced provider")
	}
}

func TestSystemPromptHeadsEveryCall(t *testing.T) {
	p := &fakeProvider{name: "openai", available: true, reply: "ok"}
	b := New("You are Aegis.", p)

	b.Think(context.Background(), "one", ThinkOptions{})
	b.Think(context.Background(), "two", ThinkOptions{})

	for _, call := range p.seen {
		if call[0].Role != models.RoleSystem || call[0].Content != "You are Aegis." {
			t.Fatalf("call missing system head: %+v", call[0])
		}
	}
	// Second call carries the first turn.
	last := p.seen[1]
	if len(last) != 4 {
		t.Fatalf("second call len = %d, want 4", len(last))
	}
}

func TestHistoryBounded(t *testing.T) {
	p := &fakeProvider{name: "openai", available: true, reply: "ok"}
	b := New("", p)

	for i := 0; i < 30; i++ {
		b.Think(context.Background(), fmt.Sprintf("msg %d", i), ThinkOptions{})
	}

	h := b.History()
	if len(h) != 40 {
		t.Fatalf("history len = %d, want 40", len(h))
	}
	// Eviction drops oldest first.
	if h[0].Content == "msg 0" {
		t.Error("oldest message was not evicted")
	}
	if h[len(h)-2].Content != "msg 29" {
		t.Errorf("latest prompt = %q", h[len(h)-2].Content)
	}
}

func TestTrinityMode(t *testing.T) {
	p1 := &fakeProvider{name: "openai", available: true, reply: "alpha view"}
	p2 := &fakeProvider{name: "anthropic", available: true, reply: "beta view"}
	p3 := &fakeProvider{name: "gemini", available: true, fail: true}
	b := New("sys", p1, p2, p3)

	b.Think(context.Background(), "warmup", ThinkOptions{})
	before := len(b.History())

	resp, err := b.TrinityMode(context.Background(), "big question")
	if err != nil {
		t.Fatalf("TrinityMode: %v", err)
	}

	individual, ok := resp.Metadata["individual_responses"].(map[string]string)
	if !ok {
		t.Fatalf("metadata = %+v", resp.Metadata)
	}
	if len(individual) != 2 || individual["anthropic"] != "beta view" {
		t.Errorf("individual = %+v", individual)
	}

	// Only prompt + synthesis appended.
	h := b.History()
	if len(h) != before+2 {
		t.Fatalf("history grew by %d, want 2", len(h)-before)
	}
	if h[len(h)-2].Content != "big question" {
		t.Errorf("prompt entry = %q", h[len(h)-2].Content)
	}

	// Every provider saw the same snapshot ending in the prompt. The
	// warmup turn only reached p1, so its trinity call is the second.
	for _, call := range [][]models.Message{p1.seen[1], p2.seen[0]} {
		if call[len(call)-1].Content != "big question" {
			t.Errorf("snapshot tail = %q", call[len(call)-1].Content)
		}
	}

	// Synthesis prompt includes both answers.
	synth := p1.seen[len(p1.seen)-1]
	text := synth[len(synth)-1].Content
	if !strings.Contains(text, "alpha view") || !strings.Contains(text, "beta view") {
		t.Error("synthesis prompt missing individual answers")
	}
}

func TestTrinityModeAllFail(t *testing.T) {
	p := &fakeProvider{name: "openai", available: true, fail: true}
	b := New("", p)

	if _, err := b.TrinityMode(context.Background(), "q"); err == nil {
		t.Fatal("expected error when no provider succeeds")
	}
	if len(b.History()) != 0 {
		t.Error("failed trinity turn left history")
	}
}

func TestSetAndClearHistory(t *testing.T) {
	p := &fakeProvider{name: "openai", available: true, reply: "ok"}
	b := New("", p)
	b.Think(context.Background(), "one", ThinkOptions{})

	saved := b.History()
	b.ClearHistory()
	if len(b.History()) != 0 {
		t.Fatal("ClearHistory left messages")
	}
	b.SetHistory(saved)
	if len(b.History()) != len(saved) {
		t.Fatal("SetHistory did not restore")
	}
}

func TestAvailable(t *testing.T) {
	if New("").Available() {
		t.Error("brain with no providers reported available")
	}
	if New("", &fakeProvider{name: "x"}).Available() {
		t.Error("brain with unconfigured provider reported available")
	}
	if !New("", &fakeProvider{name: "x", available: true}).Available() {
		t.Error("brain with configured provider reported unavailable")
	}
}
