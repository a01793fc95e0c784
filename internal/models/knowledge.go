package models

// KnowledgeEntry is one piece of user-extensible knowledge. Entries are
// identified by a timestamp+counter derived ID and ranked by importance
// (1-10) when searched.
type KnowledgeEntry struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Category   string         `json:"category"`
	Tags       []string       `json:"tags,omitempty"`
	Source     string         `json:"source,omitempty"`
	Created    string         `json:"created"`
	Updated    string         `json:"updated"`
	Importance int            `json:"importance"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// KnowledgeSummary is an aggregate view over the knowledge base.
type KnowledgeSummary struct {
	TotalEntries  int      `json:"total_entries"`
	Categories    []string `json:"categories"`
	Tags          []string `json:"tags"`
	AvgImportance float64  `json:"avg_importance"`
}
