package models

// Interaction is a single completed exchange with the user. Interactions
// are appended to the current day's log and never mutated or deleted.
type Interaction struct {
	Timestamp string   `json:"timestamp"`
	UserInput string   `json:"user_input"`
	Response  string   `json:"response"`
	Mode      string   `json:"mode"`      // conversation, coding, writing, task_management, system, ...
	Sentiment string   `json:"sentiment"` // positive, negative, neutral
	Topics    []string `json:"topics,omitempty"`
	Learned   string   `json:"learned,omitempty"` // what was learned from this exchange
}

// Commitment is a tracked promise the user made. Commitments carry a
// stable generated ID so completing one survives list reordering.
type Commitment struct {
	ID            string `json:"id"`
	Text          string `json:"commitment"`
	Created       string `json:"created"`
	Deadline      string `json:"deadline,omitempty"`
	Completed     bool   `json:"completed"`
	CompletedDate string `json:"completed_date,omitempty"`
}

// UserProfile is the singleton long-term profile built from interactions.
// It is loaded at startup and persisted in full on every mutation.
type UserProfile struct {
	Name               string         `json:"name"`
	Preferences        map[string]any `json:"preferences"`
	Interests          []string       `json:"interests"`
	Goals              []string       `json:"goals"`
	Commitments        []Commitment   `json:"commitments"`
	CommunicationStyle string         `json:"communication_style"`
	RelationshipNotes  []string       `json:"relationship_notes"`
	LastUpdated        string         `json:"last_updated"`
}

// ExternalEntity records a person or system encountered during the day.
type ExternalEntity struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	TrustLevel string `json:"trust_level"`
	Notes      string `json:"notes,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// DailyLog holds one calendar day of interactions and notes. A new log
// is created lazily on the first access after a date rollover.
type DailyLog struct {
	Date             string           `json:"date"`
	Interactions     []Interaction    `json:"interactions"`
	LessonsLearned   []string         `json:"lessons_learned"`
	Challenges       []string         `json:"challenges"`
	PerformanceNotes []string         `json:"performance_notes"`
	ExternalEntities []ExternalEntity `json:"external_entities"`
}

// DailySummary is the rendered view of a day's log handed to the
// reflection system.
type DailySummary struct {
	Date             string           `json:"date"`
	InteractionCount int              `json:"interaction_count"`
	LessonsLearned   []string         `json:"lessons_learned"`
	Challenges       []string         `json:"challenges"`
	PerformanceNotes []string         `json:"performance_notes"`
	ExternalEntities []ExternalEntity `json:"external_entities"`
	ModesUsed        []string         `json:"modes_used"`
}
