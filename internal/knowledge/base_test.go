package knowledge

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func newTestBase(t *testing.T) *Base {
	t.Helper()
	b, err := NewBase(t.TempDir())
	if err != nil {
		t.Fatalf("NewBase failed: %v", err)
	}
	return b
}

func TestAddAndGetEntry(t *testing.T) {
	b := newTestBase(t)

	id := b.AddEntry("Go tips", "Prefer returning structs.", "coding", []string{"go"}, "", 7, nil)
	e := b.GetEntry(id)
	if e == nil {
		t.Fatal("entry not found after add")
	}
	if e.Title != "Go tips" || e.Importance != 7 {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestSearchSortedByImportanceStable(t *testing.T) {
	b := newTestBase(t)

	b.AddEntry("first five", "about widgets", "general", nil, "", 5, nil)
	b.AddEntry("second five", "about widgets", "general", nil, "", 5, nil)
	b.AddEntry("a nine", "about widgets", "general", nil, "", 9, nil)
	b.AddEntry("third five", "about widgets", "general", nil, "", 5, nil)

	results := b.Search(SearchQuery{Text: "widgets"})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Title != "a nine" {
		t.Errorf("highest importance should come first, got %q", results[0].Title)
	}
	// Ties keep insertion order.
	wantOrder := []string{"first five", "second five", "third five"}
	for i, want := range wantOrder {
		if results[i+1].Title != want {
			t.Errorf("tie order[%d] = %q, want %q", i, results[i+1].Title, want)
		}
	}
}

func TestSearchFiltersCompose(t *testing.T) {
	b := newTestBase(t)

	b.AddEntry("kept", "matching text", "coding", []string{"go"}, "", 8, nil)
	b.AddEntry("wrong category", "matching text", "general", []string{"go"}, "", 8, nil)
	b.AddEntry("wrong tag", "matching text", "coding", []string{"rust"}, "", 8, nil)
	b.AddEntry("too unimportant", "matching text", "coding", []string{"go"}, "", 2, nil)

	results := b.Search(SearchQuery{
		Text:          "matching",
		Category:      "coding",
		Tags:          []string{"go"},
		MinImportance: 5,
	})
	if len(results) != 1 || results[0].Title != "kept" {
		t.Errorf("expected only 'kept', got %v", results)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	b := newTestBase(t)
	b.AddEntry("Mixed Case Title", "Some CONTENT here", "general", nil, "", 5, nil)

	if len(b.Search(SearchQuery{Text: "mixed case"})) != 1 {
		t.Error("title search should be case-insensitive")
	}
	if len(b.Search(SearchQuery{Text: "content"})) != 1 {
		t.Error("content search should be case-insensitive")
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	b := newTestBase(t)
	id := b.AddEntry("old", "body", "general", nil, "", 5, nil)

	newTitle := "new"
	imp := 9
	if !b.UpdateEntry(id, EntryUpdate{Title: &newTitle, Importance: &imp}) {
		t.Fatal("update should succeed")
	}
	e := b.GetEntry(id)
	if e.Title != "new" || e.Importance != 9 {
		t.Errorf("update not applied: %+v", e)
	}
	if e.Updated == e.Created {
		t.Log("updated timestamp equals created; acceptable within clock resolution")
	}

	if !b.DeleteEntry(id) {
		t.Fatal("delete should succeed")
	}
	if b.GetEntry(id) != nil {
		t.Error("entry should be gone after delete")
	}
	if b.DeleteEntry(id) {
		t.Error("second delete should report false")
	}
}

func TestContextForQuery(t *testing.T) {
	b := newTestBase(t)

	if got := b.ContextForQuery("anything", 3); got != "" {
		t.Errorf("empty base should yield empty context, got %q", got)
	}

	b.AddEntry("Primary Goal", "Ship the companion.", "goals", nil, "", 10, nil)
	b.AddEntry("Low signal", "Ship date trivia.", "misc", nil, "", 1, nil) // below importance floor

	ctx := b.ContextForQuery("ship", 3)
	if !strings.Contains(ctx, "RELEVANT KNOWLEDGE") || !strings.Contains(ctx, "Primary Goal") {
		t.Errorf("context missing expected entry: %q", ctx)
	}
	if strings.Contains(ctx, "Low signal") {
		t.Error("entries below the importance floor must not appear")
	}
}

func TestContextForQueryCapsResults(t *testing.T) {
	b := newTestBase(t)
	for i := 0; i < 5; i++ {
		b.AddEntry("topic entry", "shared keyword body", "general", nil, "", 5, nil)
	}
	ctx := b.ContextForQuery("shared keyword", 3)
	if got := strings.Count(ctx, "topic entry"); got != 3 {
		t.Errorf("expected 3 capped entries, got %d", got)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	b1, err := NewBase(dir)
	if err != nil {
		t.Fatal(err)
	}
	id := b1.AddEntry("persisted", "body", "general", nil, "", 6, nil)

	b2, err := NewBase(dir)
	if err != nil {
		t.Fatal(err)
	}
	if b2.GetEntry(id) == nil {
		t.Error("entry should survive reopen")
	}
}

func TestImportText(t *testing.T) {
	b := newTestBase(t)
	n := b.ImportText("first paragraph\n\nsecond paragraph\n\n\n", "", "notes.txt")
	if n != 2 {
		t.Errorf("expected 2 imported entries, got %d", n)
	}
	s := b.Summary()
	if s.TotalEntries != 2 {
		t.Errorf("summary total = %d, want 2", s.TotalEntries)
	}
}

func TestImportTextTruncatesTitleOnRuneBoundary(t *testing.T) {
	b := newTestBase(t)
	para := strings.Repeat("ü", 60)
	if n := b.ImportText(para, "", "notes.txt"); n != 1 {
		t.Fatalf("expected 1 imported entry, got %d", n)
	}

	entries := b.ByCategory("imported")
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	title := entries[0].Title
	if !utf8.ValidString(title) {
		t.Errorf("title is not valid UTF-8: %q", title)
	}
	if want := strings.Repeat("ü", 50) + "..."; title != want {
		t.Errorf("title = %q, want %q", title, want)
	}
}
