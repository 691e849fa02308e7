package tale

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Metadata is the per-tale record written during ingestion: the title,
// the number of retrievable chunks, and the human-authored summary of
// the original tale kept as a grounding fallback.
type Metadata struct {
	Title           string `json:"title"`
	ChunkCount      int    `json:"chunk_count"`
	OriginalSummary string `json:"original_summary"`
}

// Table is the read-only metadata table for all ingested tales. It is
// loaded once at process start and shared for the process lifetime;
// there is no invalidation path.
type Table struct {
	entries map[string]Metadata
}

// LoadTable reads the metadata file produced by ingestion. A missing
// or unreadable file yields an empty table rather than an error so the
// server can start before the first ingestion run.
func LoadTable(path string) *Table {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Table{entries: map[string]Metadata{}}
	}

	var entries map[string]Metadata
	if err := json.Unmarshal(data, &entries); err != nil {
		return &Table{entries: map[string]Metadata{}}
	}
	return &Table{entries: entries}
}

// NewTable builds a table directly from entries; used by tests and by
// the ingestion job before saving.
func NewTable(entries map[string]Metadata) *Table {
	if entries == nil {
		entries = map[string]Metadata{}
	}
	return &Table{entries: entries}
}

// Titles returns all tale titles in sorted order.
func (t *Table) Titles() []string {
	titles := make([]string, 0, len(t.entries))
	for title := range t.entries {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Get returns the metadata for one tale.
func (t *Table) Get(title string) (Metadata, bool) {
	m, ok := t.entries[title]
	return m, ok
}

// OriginalSummary returns the human-authored summary for a tale,
// falling back to a generic line for unknown titles.
func (t *Table) OriginalSummary(title string) string {
	if m, ok := t.entries[title]; ok && m.OriginalSummary != "" {
		return m.OriginalSummary
	}
	return fmt.Sprintf("The original tale of %s.", title)
}

// SaveTable writes the metadata file, creating parent directories as
// needed.
func SaveTable(path string, entries map[string]Metadata) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}
