// Package tale holds the source documents and the per-tale metadata
// produced by ingestion and consumed at generation time.
package tale

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tale is one source document for ingestion.
type Tale struct {
	Title           string `json:"title"`
	FullText        string `json:"fullText"`
	OriginalSummary string `json:"originalSummary"`
}

// LoadTales reads a JSON array of tales from disk.
func LoadTales(path string) ([]Tale, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tales file: %w", err)
	}

	var tales []Tale
	if err := json.Unmarshal(data, &tales); err != nil {
		return nil, fmt.Errorf("failed to parse tales file: %w", err)
	}
	return tales, nil
}
