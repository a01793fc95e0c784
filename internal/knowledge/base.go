package knowledge

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"aegis/internal/models"
	"aegis/internal/storage"
)

// Base is the user-extensible knowledge base, persisted as a single
// JSON document. Entries keep their insertion order so that search
// results with equal importance come back in the order they were added.
type Base struct {
	mu      sync.RWMutex
	path    string
	entries []models.KnowledgeEntry

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewBase loads (or lazily creates) the knowledge base stored under dir.
func NewBase(dir string) (*Base, error) {
	b := &Base{
		path: filepath.Join(dir, "knowledge_entries.json"),
		done: make(chan struct{}),
	}
	if _, err := storage.Load(b.path, &b.entries); err != nil {
		return nil, err
	}
	log.Printf("📚 [KNOWLEDGE] Knowledge base initialized with %d entries", len(b.entries))
	return b, nil
}

// Watch starts reloading the store when the backing file changes on
// disk, so entries edited by hand show up without a restart.
func (b *Base) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(b.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(b.path), err)
	}
	b.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name == b.path && event.Op.Has(fsnotify.Write) {
					b.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ [KNOWLEDGE] Watcher error: %v", err)
			case <-b.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the file watcher, if one was started.
func (b *Base) Close() {
	close(b.done)
	if b.watcher != nil {
		b.watcher.Close()
	}
}

func (b *Base) reload() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var entries []models.KnowledgeEntry
	ok, err := storage.Load(b.path, &entries)
	if err != nil || !ok {
		return
	}
	b.entries = entries
	log.Printf("🔄 [KNOWLEDGE] Reloaded %d entries from disk", len(entries))
}

func (b *Base) save() {
	if err := storage.Save(b.path, b.entries); err != nil {
		log.Printf("⚠️ [KNOWLEDGE] Error saving knowledge base: %v", err)
	}
}

func (b *Base) generateID() string {
	return fmt.Sprintf("kb_%s_%d", time.Now().Format("20060102150405"), len(b.entries))
}

// AddEntry stores a new knowledge entry and returns its ID.
func (b *Base) AddEntry(title, content, category string, tags []string, source string, importance int, metadata map[string]any) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if category == "" {
		category = "general"
	}
	now := models.Now()
	entry := models.KnowledgeEntry{
		ID:         b.generateID(),
		Title:      title,
		Content:    content,
		Category:   category,
		Tags:       tags,
		Source:     source,
		Created:    now,
		Updated:    now,
		Importance: importance,
		Metadata:   metadata,
	}
	b.entries = append(b.entries, entry)
	b.save()

	log.Printf("📚 [KNOWLEDGE] Added entry %q [%s]", title, category)
	return entry.ID
}

// UpdateEntry applies the given field updates to an entry. Returns
// false when the ID is unknown.
func (b *Base) UpdateEntry(id string, update EntryUpdate) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.entries {
		if b.entries[i].ID != id {
			continue
		}
		e := &b.entries[i]
		if update.Title != nil {
			e.Title = *update.Title
		}
		if update.Content != nil {
			e.Content = *update.Content
		}
		if update.Category != nil {
			e.Category = *update.Category
		}
		if update.Tags != nil {
			e.Tags = update.Tags
		}
		if update.Source != nil {
			e.Source = *update.Source
		}
		if update.Importance != nil {
			e.Importance = *update.Importance
		}
		e.Updated = models.Now()
		b.save()
		return true
	}
	return false
}

// EntryUpdate carries optional field overrides for UpdateEntry. Nil
// fields are left unchanged.
type EntryUpdate struct {
	Title      *string
	Content    *string
	Category   *string
	Tags       []string
	Source     *string
	Importance *int
}

// DeleteEntry removes an entry by ID.
func (b *Base) DeleteEntry(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.entries {
		if b.entries[i].ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			b.save()
			return true
		}
	}
	return false
}

// GetEntry returns the entry with the given ID, or nil.
func (b *Base) GetEntry(id string) *models.KnowledgeEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.entries {
		if b.entries[i].ID == id {
			e := b.entries[i]
			return &e
		}
	}
	return nil
}

// SearchQuery combines the optional search filters, ANDed together.
type SearchQuery struct {
	Text          string   // case-insensitive substring of title or content
	Category      string   // exact category match
	Tags          []string // any-tag match
	MinImportance int
}

// Search returns all entries passing every filter, sorted by descending
// importance. The sort is stable, so equal-importance entries keep
// their insertion order.
func (b *Base) Search(q SearchQuery) []models.KnowledgeEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	text := strings.ToLower(q.Text)

	var results []models.KnowledgeEntry
	for _, e := range b.entries {
		if e.Importance < q.MinImportance {
			continue
		}
		if q.Category != "" && e.Category != q.Category {
			continue
		}
		if len(q.Tags) > 0 && !anyTagMatch(q.Tags, e.Tags) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(e.Title), text) &&
			!strings.Contains(strings.ToLower(e.Content), text) {
			continue
		}
		results = append(results, e)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Importance > results[j].Importance
	})
	return results
}

func anyTagMatch(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

// ByCategory returns all entries in a category.
func (b *Base) ByCategory(category string) []models.KnowledgeEntry {
	return b.Search(SearchQuery{Category: category})
}

// Categories returns the distinct categories in use.
func (b *Base) Categories() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := map[string]bool{}
	var out []string
	for _, e := range b.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}

// Tags returns the distinct tags in use.
func (b *Base) Tags() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := map[string]bool{}
	var out []string
	for _, e := range b.entries {
		for _, t := range e.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// ContextForQuery renders up to maxEntries relevant entries
// (importance 3+) as a prompt-ready block; empty string when nothing
// matches.
func (b *Base) ContextForQuery(query string, maxEntries int) string {
	results := b.Search(SearchQuery{Text: query, MinImportance: 3})
	if len(results) == 0 {
		return ""
	}
	if len(results) > maxEntries {
		results = results[:maxEntries]
	}

	var sb strings.Builder
	sb.WriteString("## RELEVANT KNOWLEDGE\n\n")
	for _, e := range results {
		fmt.Fprintf(&sb, "**%s** [%s]\n%s\n\n", e.Title, e.Category, e.Content)
	}
	return sb.String()
}

// ImportText splits text into paragraphs and stores each as an entry.
// Returns the number of entries imported.
func (b *Base) ImportText(text, category, source string) int {
	if category == "" {
		category = "imported"
	}

	count := 0
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		title := para
		if runes := []rune(title); len(runes) > 50 {
			title = string(runes[:50]) + "..."
		}
		b.AddEntry(title, para, category, nil, source, 5, nil)
		count++
	}

	log.Printf("📚 [KNOWLEDGE] Imported %d entries from %s", count, source)
	return count
}

// Summary returns aggregate statistics over the knowledge base.
func (b *Base) Summary() models.KnowledgeSummary {
	b.mu.RLock()
	total := len(b.entries)
	var sum int
	for _, e := range b.entries {
		sum += e.Importance
	}
	b.mu.RUnlock()

	avg := 0.0
	if total > 0 {
		avg = float64(sum) / float64(total)
	}
	return models.KnowledgeSummary{
		TotalEntries:  total,
		Categories:    b.Categories(),
		Tags:          b.Tags(),
		AvgImportance: avg,
	}
}
