// Package report summarizes a completed split run.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/splitdump/splitdump/internal/output"
)

// File is one produced output file with its content digest.
type File struct {
	Name   string `json:"name"`
	Sha256 string `json:"sha256"`
}

// Summary is the machine-readable result of one run.
type Summary struct {
	InvocationID string    `json:"invocation_id"`
	CompletedAt  time.Time `json:"completed_at"`
	Database     string    `json:"database"`
	Manifest     string    `json:"manifest"`
	Tables       int       `json:"tables"`
	Lines        int64     `json:"lines"`
	Inserts      int64     `json:"inserts"`
	Files        []File    `json:"files"`
	Deleted      []string  `json:"deleted,omitempty"`
}

// New assembles a summary from the run's collaborators.
func New(database, manifest string, tables int, lines, inserts int64, written []output.FileDigest, deleted []string) *Summary {
	files := make([]File, 0, len(written))
	for _, fd := range written {
		files = append(files, File{Name: fd.Name, Sha256: fd.Digest})
	}
	return &Summary{
		InvocationID: uuid.NewString(),
		CompletedAt:  time.Now().UTC(),
		Database:     database,
		Manifest:     manifest,
		Tables:       tables,
		Lines:        lines,
		Inserts:      inserts,
		Files:        files,
		Deleted:      deleted,
	}
}

// WriteFile serializes the summary as indented JSON to path.
func (s *Summary) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write run summary %s: %w", path, err)
	}
	return nil
}
