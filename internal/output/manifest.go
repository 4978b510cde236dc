package output

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
)

// Manifest accumulates one include directive per distinct output file,
// in first-reference order. The file is truncated lazily on the first
// record, so the manifest always begins the run empty; an optional
// preamble is written before the first directive.
type Manifest struct {
	path      string
	dirPrefix string
	preamble  string
	f         *os.File
	seen      map[string]bool
	entries   []string
}

// NewManifest prepares a manifest at path. dirPrefix is the output
// directory as referenced from the manifest's own location; it is
// prepended to every directive.
func NewManifest(path, dirPrefix, preamble string) *Manifest {
	return &Manifest{
		path:      path,
		dirPrefix: dirPrefix,
		preamble:  preamble,
		seen:      map[string]bool{},
	}
}

// Record appends a "source <dir>/<name>" directive for the named output
// file. Recording the same name again is a no-op, so re-activation never
// duplicates an entry.
func (mf *Manifest) Record(name string) error {
	if mf.seen[name] {
		return nil
	}
	if mf.f == nil {
		f, err := os.OpenFile(mf.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create manifest %s: %w", mf.path, err)
		}
		mf.f = f
		if mf.preamble != "" {
			text := mf.preamble
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			if _, err := f.WriteString(text); err != nil {
				return fmt.Errorf("failed to write manifest preamble: %w", err)
			}
		}
	}
	rel := path.Join(mf.dirPrefix, name)
	if _, err := fmt.Fprintf(mf.f, "source %s\n", rel); err != nil {
		return fmt.Errorf("failed to write manifest entry for %s: %w", name, err)
	}
	slog.Debug("recorded manifest entry", "entry", rel)
	mf.seen[name] = true
	mf.entries = append(mf.entries, rel)
	return nil
}

// Entries returns the recorded directive paths in order.
func (mf *Manifest) Entries() []string {
	return mf.entries
}

// Path returns the manifest's file path.
func (mf *Manifest) Path() string {
	return mf.path
}

// Close closes the manifest file if it was ever opened.
func (mf *Manifest) Close() error {
	if mf.f == nil {
		return nil
	}
	if err := mf.f.Close(); err != nil {
		return fmt.Errorf("failed to close manifest %s: %w", mf.path, err)
	}
	return nil
}
