package models

// DailyReflection is the once-daily generated narrative plus the
// structured sections it was built from. One per calendar day;
// regenerating a day overwrites the previous file.
type DailyReflection struct {
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`

	// What was learned
	LessonsLearned []string `json:"lessons_learned"`
	NewKnowledge   []string `json:"new_knowledge"`
	UserInsights   []string `json:"user_insights"`

	// Challenges faced
	Challenges   []string `json:"challenges"`
	Difficulties []string `json:"difficulties"`

	// Performance review
	Successes          []string `json:"successes"`
	ImprovementsNeeded []string `json:"improvements_needed"`
	ActionItems        []string `json:"action_items"`

	// Relationship status
	RelationshipQuality string   `json:"relationship_quality"`
	ConnectionMoments   []string `json:"connection_moments"`
	TensionMoments      []string `json:"tension_moments"`
	RelationshipNotes   string   `json:"relationship_notes"`

	// External interactions
	ExternalEntities []ExternalEntity `json:"external_entities"`
	ThreatAssessment []string         `json:"threat_assessment"`
	TrustNotes       string           `json:"trust_notes"`

	// Strategic outlook
	CurrentGoals       []string           `json:"current_goals"`
	GoalProgress       map[string]string  `json:"goal_progress"`
	TomorrowPriorities []string           `json:"tomorrow_priorities"`
	StrategicNotes     string             `json:"strategic_notes"`

	// Meta
	ReflectionText  string  `json:"reflection_text"`
	DurationSeconds float64 `json:"duration_seconds"`
}
