// Package memory holds the companion's long-term memory: the singleton
// user profile and the per-day interaction logs. Every mutation writes
// the affected JSON file in full.
package memory

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"aegis/internal/models"
	"aegis/internal/storage"
)

// Store manages the user profile and daily logs under a data directory:
//
//	<dir>/user_profile.json
//	<dir>/daily_logs/<YYYY-MM-DD>.json
type Store struct {
	mu       sync.Mutex
	dir      string
	userName string

	profile  models.UserProfile
	todayLog models.DailyLog

	// now is swappable for day-rollover tests.
	now func() time.Time
}

// NewStore loads (or creates) the memory store under dir. userName
// seeds a fresh profile's name; an existing profile keeps its own.
func NewStore(dir, userName string) (*Store, error) {
	s := &Store{
		dir:      dir,
		userName: userName,
		now:      time.Now,
	}

	if err := s.loadProfile(); err != nil {
		return nil, err
	}
	if err := s.loadTodayLog(); err != nil {
		return nil, err
	}

	log.Printf("🧠 [MEMORY] Memory store initialized (%d interactions today)", len(s.todayLog.Interactions))
	return s, nil
}

func (s *Store) profilePath() string {
	return filepath.Join(s.dir, "user_profile.json")
}

func (s *Store) logPath(date string) string {
	return filepath.Join(s.dir, "daily_logs", date+".json")
}

func (s *Store) today() string {
	return s.now().Format("2006-01-02")
}

func (s *Store) loadProfile() error {
	ok, err := storage.Load(s.profilePath(), &s.profile)
	if err != nil {
		return fmt.Errorf("failed to load user profile: %w", err)
	}
	if !ok {
		s.profile = models.UserProfile{
			Name:               s.userName,
			Preferences:        map[string]any{},
			CommunicationStyle: "direct",
		}
	}
	return nil
}

func (s *Store) loadTodayLog() error {
	today := s.today()
	ok, err := storage.Load(s.logPath(today), &s.todayLog)
	if err != nil {
		return fmt.Errorf("failed to load daily log: %w", err)
	}
	if !ok || s.todayLog.Date != today {
		s.todayLog = models.DailyLog{Date: today}
	}
	return nil
}

func (s *Store) saveProfile() {
	if err := storage.Save(s.profilePath(), &s.profile); err != nil {
		log.Printf("⚠️ [MEMORY] Error saving user profile: %v", err)
	}
}

func (s *Store) saveTodayLog() {
	if err := storage.Save(s.logPath(s.todayLog.Date), &s.todayLog); err != nil {
		log.Printf("⚠️ [MEMORY] Error saving daily log: %v", err)
	}
}

// RecordInteraction appends a completed exchange to today's log. When
// learned is non-empty it is also recorded as a lesson.
func (s *Store) RecordInteraction(userInput, response, mode string, topics []string, learned string) {
	s.mu.Lock()

	if mode == "" {
		mode = "conversation"
	}
	s.todayLog.Interactions = append(s.todayLog.Interactions, models.Interaction{
		Timestamp: s.now().Format(time.RFC3339),
		UserInput: userInput,
		Response:  response,
		Mode:      mode,
		Sentiment: "neutral",
		Topics:    topics,
		Learned:   learned,
	})
	s.saveTodayLog()
	s.mu.Unlock()

	if learned != "" {
		s.AddLesson(learned)
	}
}

// AddLesson records something learned today. Exact duplicates are
// skipped.
func (s *Store) AddLesson(lesson string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.todayLog.LessonsLearned {
		if l == lesson {
			return
		}
	}
	s.todayLog.LessonsLearned = append(s.todayLog.LessonsLearned, lesson)
	s.saveTodayLog()
}

// AddChallenge records a challenge faced today. Exact duplicates are
// skipped.
func (s *Store) AddChallenge(challenge string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.todayLog.Challenges {
		if c == challenge {
			return
		}
	}
	s.todayLog.Challenges = append(s.todayLog.Challenges, challenge)
	s.saveTodayLog()
}

// AddPerformanceNote appends a performance note to today's log.
func (s *Store) AddPerformanceNote(note string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.todayLog.PerformanceNotes = append(s.todayLog.PerformanceNotes, note)
	s.saveTodayLog()
}

// AddExternalEntity records a person or system encountered today.
func (s *Store) AddExternalEntity(name, entityType, trustLevel, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.todayLog.ExternalEntities = append(s.todayLog.ExternalEntities, models.ExternalEntity{
		Name:       name,
		Type:       entityType,
		TrustLevel: trustLevel,
		Notes:      notes,
		Timestamp:  s.now().Format(time.RFC3339),
	})
	s.saveTodayLog()
}

// TrackCommitment records a commitment the user made and returns its
// generated ID.
func (s *Store) TrackCommitment(text, deadline string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := models.Commitment{
		ID:       uuid.New().String(),
		Text:     text,
		Created:  s.now().Format(time.RFC3339),
		Deadline: deadline,
	}
	s.profile.Commitments = append(s.profile.Commitments, c)
	s.saveProfile()

	log.Printf("🧠 [MEMORY] Tracked commitment: %s", text)
	return c.ID
}

// CompleteCommitment marks the commitment with the given ID completed.
// Unknown IDs return an error; IDs stay valid across list reordering.
func (s *Store) CompleteCommitment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profile.Commitments {
		if s.profile.Commitments[i].ID == id {
			s.profile.Commitments[i].Completed = true
			s.profile.Commitments[i].CompletedDate = s.now().Format(time.RFC3339)
			s.saveProfile()
			return nil
		}
	}
	return fmt.Errorf("unknown commitment: %s", id)
}

// PendingCommitments returns all commitments not yet completed.
func (s *Store) PendingCommitments() []models.Commitment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []models.Commitment
	for _, c := range s.profile.Commitments {
		if !c.Completed {
			pending = append(pending, c)
		}
	}
	return pending
}

// AddInterest adds an interest to the profile, skipping exact
// duplicates.
func (s *Store) AddInterest(interest string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.profile.Interests {
		if v == interest {
			return
		}
	}
	s.profile.Interests = append(s.profile.Interests, interest)
	s.profile.LastUpdated = s.now().Format(time.RFC3339)
	s.saveProfile()
}

// AddGoal adds a goal to the profile, skipping exact duplicates.
func (s *Store) AddGoal(goal string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.profile.Goals {
		if v == goal {
			return
		}
	}
	s.profile.Goals = append(s.profile.Goals, goal)
	s.profile.LastUpdated = s.now().Format(time.RFC3339)
	s.saveProfile()
}

// AddRelationshipNote appends a note about the relationship.
func (s *Store) AddRelationshipNote(note string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.RelationshipNotes = append(s.profile.RelationshipNotes, note)
	s.profile.LastUpdated = s.now().Format(time.RFC3339)
	s.saveProfile()
}

// Profile returns a copy of the current user profile.
func (s *Store) Profile() models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// DailySummary renders today's log for the reflection system.
func (s *Store) DailySummary() models.DailySummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var modes []string
	for _, i := range s.todayLog.Interactions {
		if !seen[i.Mode] {
			seen[i.Mode] = true
			modes = append(modes, i.Mode)
		}
	}

	return models.DailySummary{
		Date:             s.todayLog.Date,
		InteractionCount: len(s.todayLog.Interactions),
		LessonsLearned:   s.todayLog.LessonsLearned,
		Challenges:       s.todayLog.Challenges,
		PerformanceNotes: s.todayLog.PerformanceNotes,
		ExternalEntities: s.todayLog.ExternalEntities,
		ModesUsed:        modes,
	}
}

// UserContext renders the profile and pending commitments into the
// fixed-template block included in LLM prompts. Pure formatting; no
// side effects.
func (s *Store) UserContext() string {
	s.mu.Lock()
	profile := s.profile
	s.mu.Unlock()

	var pending []models.Commitment
	for _, c := range profile.Commitments {
		if !c.Completed {
			pending = append(pending, c)
		}
	}

	interests := "Still learning..."
	if len(profile.Interests) > 0 {
		interests = strings.Join(profile.Interests, ", ")
	}
	goals := "None recorded yet"
	if len(profile.Goals) > 0 {
		goals = strings.Join(profile.Goals, ", ")
	}

	var b strings.Builder
	b.WriteString("\n## USER CONTEXT\n\n")
	fmt.Fprintf(&b, "**Name:** %s\n", profile.Name)
	fmt.Fprintf(&b, "**Communication Style:** %s\n\n", profile.CommunicationStyle)
	fmt.Fprintf(&b, "**Interests:** %s\n\n", interests)
	fmt.Fprintf(&b, "**Goals:** %s\n\n", goals)

	b.WriteString("**Pending Commitments:**\n")
	if len(pending) == 0 {
		b.WriteString("- No pending commitments\n")
	} else {
		for _, c := range pending {
			fmt.Fprintf(&b, "- %s\n", c.Text)
		}
	}

	b.WriteString("\n**Recent Relationship Notes:**\n")
	if len(profile.RelationshipNotes) == 0 {
		b.WriteString("- Building our bond...\n")
	} else {
		notes := profile.RelationshipNotes
		if len(notes) > 3 {
			notes = notes[len(notes)-3:]
		}
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

// NewDayCheck swaps in a fresh empty log when the date has rolled over
// since the current log was created. The previous day's file is left
// untouched on disk.
func (s *Store) NewDayCheck() {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	if s.todayLog.Date == today {
		return
	}

	log.Printf("🌅 [MEMORY] New day detected, starting fresh log for %s", today)
	s.todayLog = models.DailyLog{Date: today}
	s.saveTodayLog()
}
