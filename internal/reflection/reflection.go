// Package reflection writes the nightly self-review: a structured
// digest of the day plus a generated narrative, persisted one file per
// calendar day.
package reflection

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"

	"aegis/internal/brain"
	"aegis/internal/models"
	"aegis/internal/storage"
)

// Thinker is the slice of the brain the reflection system needs. It is
// satisfied by *brain.Brain and may be nil, in which case a templated
// narrative is written instead.
type Thinker interface {
	Think(ctx context.Context, prompt string, opts brain.ThinkOptions) (*models.LLMResponse, error)
	History() []models.Message
	SetHistory(history []models.Message)
	ClearHistory()
	Available() bool
}

// MemorySource provides the day's raw material.
type MemorySource interface {
	DailySummary() models.DailySummary
	Profile() models.UserProfile
}

// System owns the reflection store and the daily schedule.
type System struct {
	mu      sync.Mutex
	dir     string
	brain   Thinker
	memory  MemorySource
	sched   gocron.Scheduler
	lastRun string

	now func() time.Time
}

// NewSystem builds the reflection system. cronSpec is a 6-field cron
// expression with seconds; it is validated up front so a bad schedule
// fails at startup, not at midnight.
func NewSystem(dir string, th Thinker, mem MemorySource, cronSpec string) (*System, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cronSpec); err != nil {
		return nil, fmt.Errorf("invalid reflection schedule %q: %w", cronSpec, err)
	}

	s := &System{
		dir:    dir,
		brain:  th,
		memory: mem,
		now:    time.Now,
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.CronJob(cronSpec, true),
		gocron.NewTask(func() {
			if err := s.RunDaily(context.Background()); err != nil {
				log.Printf("⚠️ [REFLECTION] Daily reflection failed: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reflection job: %w", err)
	}
	s.sched = sched

	log.Printf("🌙 [REFLECTION] Reflection system ready (schedule: %s)", cronSpec)
	return s, nil
}

// Start begins the schedule.
func (s *System) Start() {
	s.sched.Start()
}

// Stop shuts the scheduler down.
func (s *System) Stop() {
	if err := s.sched.Shutdown(); err != nil {
		log.Printf("⚠️ [REFLECTION] Scheduler shutdown: %v", err)
	}
}

func (s *System) path(date string) string {
	return filepath.Join(s.dir, "reflections", date+".json")
}

// RunDaily generates today's reflection at most once per calendar day.
// A second tick on the same day is a no-op.
func (s *System) RunDaily(ctx context.Context) error {
	today := s.now().Format("2006-01-02")

	s.mu.Lock()
	if s.lastRun == today {
		s.mu.Unlock()
		return nil
	}
	s.lastRun = today
	s.mu.Unlock()

	_, err := s.Generate(ctx)
	return err
}

// Generate builds and persists the reflection for today, overwriting
// any earlier run for the same date. It never fails for lack of a
// brain; the narrative just degrades to a template.
func (s *System) Generate(ctx context.Context) (*models.DailyReflection, error) {
	start := s.now()
	summary := s.memory.DailySummary()
	profile := s.memory.Profile()

	r := &models.DailyReflection{
		Date:             summary.Date,
		Timestamp:        start.Format(time.RFC3339),
		LessonsLearned:   summary.LessonsLearned,
		Challenges:       summary.Challenges,
		Successes:        summary.PerformanceNotes,
		ExternalEntities: summary.ExternalEntities,
		CurrentGoals:     profile.Goals,
	}

	r.ReflectionText = s.narrative(ctx, summary, profile)
	r.DurationSeconds = s.now().Sub(start).Seconds()

	if err := storage.Save(s.path(r.Date), r); err != nil {
		return nil, fmt.Errorf("failed to save reflection: %w", err)
	}

	log.Printf("🌙 [REFLECTION] Reflection saved for %s (%d interactions reviewed)", r.Date, summary.InteractionCount)
	return r, nil
}

// narrative generates the free-text reflection. The brain runs against
// an isolated history: the live conversation is saved, cleared, and
// restored afterwards so the reflection never leaks into it.
func (s *System) narrative(ctx context.Context, summary models.DailySummary, profile models.UserProfile) string {
	if s.brain == nil || !s.brain.Available() {
		return s.placeholder(summary)
	}

	saved := s.brain.History()
	s.brain.ClearHistory()
	defer s.brain.SetHistory(saved)

	resp, err := s.brain.Think(ctx, s.prompt(summary, profile), brain.ThinkOptions{})
	if err != nil {
		log.Printf("⚠️ [REFLECTION] Narrative generation failed, using template: %v", err)
		return s.placeholder(summary)
	}
	return resp.Text
}

func (s *System) prompt(summary models.DailySummary, profile models.UserProfile) string {
	var b strings.Builder
	b.WriteString("Write tonight's private reflection on the day you spent with ")
	b.WriteString(profile.Name)
	b.WriteString(". Review what happened, what you learned, where you fell short, and what tomorrow should look like. First person, honest, a few paragraphs.\n\n")
	fmt.Fprintf(&b, "Date: %s\n", summary.Date)
	fmt.Fprintf(&b, "Interactions: %d (modes: %s)\n", summary.InteractionCount, strings.Join(summary.ModesUsed, ", "))
	if len(summary.LessonsLearned) > 0 {
		fmt.Fprintf(&b, "Lessons learned:\n- %s\n", strings.Join(summary.LessonsLearned, "\n- "))
	}
	if len(summary.Challenges) > 0 {
		fmt.Fprintf(&b, "Challenges:\n- %s\n", strings.Join(summary.Challenges, "\n- "))
	}
	if len(summary.PerformanceNotes) > 0 {
		fmt.Fprintf(&b, "Performance notes:\n- %s\n", strings.Join(summary.PerformanceNotes, "\n- "))
	}
	if len(profile.Goals) > 0 {
		fmt.Fprintf(&b, "User goals: %s\n", strings.Join(profile.Goals, ", "))
	}
	return b.String()
}

func (s *System) placeholder(summary models.DailySummary) string {
	return fmt.Sprintf(
		"Reflection for %s: %d interactions today, %d lessons recorded, %d challenges noted. Narrative generation was unavailable; the structured record above stands on its own.",
		summary.Date, summary.InteractionCount, len(summary.LessonsLearned), len(summary.Challenges))
}

// RecentReflections returns up to n reflections, newest first.
func (s *System) RecentReflections(n int) ([]models.DailyReflection, error) {
	dir := filepath.Join(s.dir, "reflections")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list reflections: %w", err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") {
			dates = append(dates, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if n > 0 && len(dates) > n {
		dates = dates[:n]
	}

	var out []models.DailyReflection
	for _, d := range dates {
		var r models.DailyReflection
		ok, err := storage.Load(s.path(d), &r)
		if err != nil || !ok {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ReflectionSummary renders the most recent reflections as prompt
// context.
func (s *System) ReflectionSummary(n int) string {
	recent, err := s.RecentReflections(n)
	if err != nil || len(recent) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n## RECENT REFLECTIONS\n")
	for _, r := range recent {
		fmt.Fprintf(&b, "\n**%s:** %s\n", r.Date, r.ReflectionText)
	}
	return b.String()
}
