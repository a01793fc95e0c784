package reflection

import (
	"context"
	"strings"
	"testing"
	"time"

	"aegis/internal/brain"
	"aegis/internal/models"
	"aegis/internal/storage"
)

type fakeMemory struct {
	summary models.DailySummary
	profile models.UserProfile
}

func (f *fakeMemory) DailySummary() models.DailySummary { return f.summary }
func (f *fakeMemory) Profile() models.UserProfile       { return f.profile }

type fakeThinker struct {
	available bool
	reply     string
	prompts   []string
	history   []models.Message
	setCalls  [][]models.Message
	cleared   int
}

func (f *fakeThinker) Think(_ context.Context, prompt string, _ brain.ThinkOptions) (*models.LLMResponse, error) {
	f.prompts = append(f.prompts, prompt)
	return &models.LLMResponse{Text: f.reply}, nil
}

func (f *fakeThinker) History() []models.Message { return f.history }

func (f *fakeThinker) SetHistory(h []models.Message) {
	f.setCalls = append(f.setCalls, h)
}

func (f *fakeThinker) ClearHistory() { f.cleared++ }
func (f *fakeThinker) Available() bool { return f.available }

func testMemory() *fakeMemory {
	return &fakeMemory{
		summary: models.DailySummary{
			Date:             "2026-08-30",
			InteractionCount: 5,
			LessonsLearned:   []string{"user works late"},
			Challenges:       []string{"flaky microphone"},
			ModesUsed:        []string{"conversation"},
		},
		profile: models.UserProfile{Name: "Tester", Goals: []string{"ship v1"}},
	}
}

func TestNewSystemRejectsBadCron(t *testing.T) {
	if _, err := NewSystem(t.TempDir(), nil, testMemory(), "not a cron"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	if _, err := NewSystem(t.TempDir(), nil, testMemory(), "1 0 0 * * *"); err != nil {
		t.Fatalf("valid cron rejected: %v", err)
	}
}

func TestGeneratePersistsAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	mem := testMemory()
	s, err := NewSystem(dir, nil, mem, "1 0 0 * * *")
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	r, err := s.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.Date != "2026-08-30" || len(r.LessonsLearned) != 1 {
		t.Errorf("reflection = %+v", r)
	}
	// Placeholder narrative without a brain.
	if !strings.Contains(r.ReflectionText, "5 interactions") {
		t.Errorf("placeholder = %q", r.ReflectionText)
	}

	// Rerun overwrites the same date.
	mem.summary.InteractionCount = 9
	if _, err := s.Generate(context.Background()); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	var onDisk models.DailyReflection
	ok, err := storage.Load(s.path("2026-08-30"), &onDisk)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(onDisk.ReflectionText, "9 interactions") {
		t.Errorf("overwrite missed: %q", onDisk.ReflectionText)
	}
}

func TestGenerateIsolatesBrainHistory(t *testing.T) {
	th := &fakeThinker{
		available: true,
		reply:     "today went well",
		history:   []models.Message{{Role: models.RoleUser, Content: "live convo"}},
	}
	s, err := NewSystem(t.TempDir(), th, testMemory(), "1 0 0 * * *")
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	r, err := s.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.ReflectionText != "today went well" {
		t.Errorf("narrative = %q", r.ReflectionText)
	}
	if th.cleared != 1 {
		t.Errorf("ClearHistory calls = %d, want 1", th.cleared)
	}
	if len(th.setCalls) != 1 || len(th.setCalls[0]) != 1 || th.setCalls[0][0].Content != "live convo" {
		t.Errorf("history not restored: %+v", th.setCalls)
	}
	if len(th.prompts) != 1 || !strings.Contains(th.prompts[0], "user works late") {
		t.Errorf("prompt missing day summary: %q", th.prompts)
	}
}

func TestRunDailyOncePerDay(t *testing.T) {
	dir := t.TempDir()
	mem := testMemory()
	s, err := NewSystem(dir, nil, mem, "1 0 0 * * *")
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	if err := s.RunDaily(context.Background()); err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	first, _ := s.RecentReflections(1)
	ts := first[0].Timestamp

	// Second tick the same day does nothing.
	time.Sleep(10 * time.Millisecond)
	if err := s.RunDaily(context.Background()); err != nil {
		t.Fatalf("second RunDaily: %v", err)
	}
	again, _ := s.RecentReflections(1)
	if again[0].Timestamp != ts {
		t.Error("second same-day tick regenerated the reflection")
	}

	// Next day runs again.
	s.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	mem.summary.Date = "2026-08-31"
	if err := s.RunDaily(context.Background()); err != nil {
		t.Fatalf("next-day RunDaily: %v", err)
	}
	all, _ := s.RecentReflections(0)
	if len(all) != 2 {
		t.Errorf("reflections = %d, want 2", len(all))
	}
}

func TestRecentReflectionsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	mem := testMemory()
	s, err := NewSystem(dir, nil, mem, "1 0 0 * * *")
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	for _, d := range []string{"2026-08-28", "2026-08-29", "2026-08-30"} {
		mem.summary.Date = d
		if _, err := s.Generate(context.Background()); err != nil {
			t.Fatalf("Generate %s: %v", d, err)
		}
	}

	recent, err := s.RecentReflections(2)
	if err != nil {
		t.Fatalf("RecentReflections: %v", err)
	}
	if len(recent) != 2 || recent[0].Date != "2026-08-30" || recent[1].Date != "2026-08-29" {
		t.Fatalf("recent = %+v", recent)
	}

	sum := s.ReflectionSummary(1)
	if !strings.Contains(sum, "2026-08-30") || strings.Contains(sum, "2026-08-28") {
		t.Errorf("summary = %q", sum)
	}
}
