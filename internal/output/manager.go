// Package output owns the physical files a split run produces: their
// creation, truncation and append lifecycle, the manifest that
// re-assembles them, and the claim callbacks that protect them from the
// stale-file reaper.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/splitdump/splitdump/internal/hash"
)

type openFile struct {
	f  *os.File
	hw *hash.Writer
}

// FileDigest pairs a produced file with the SHA-256 digest of its
// content, in the order the files were first activated.
type FileDigest struct {
	Name   string
	Digest string
}

// Manager owns the mapping from logical target to open file handle.
// Activation truncates, every later write appends through the retained
// handle, and each touched target is claimed with the reaper and
// recorded in the manifest exactly once.
type Manager struct {
	dir      string
	manifest *Manifest
	claim    func(path string)
	files    map[string]*openFile
	order    []string
}

// NewManager validates the output directory and creates it if missing.
// A regular file squatting on the directory path is fatal; it is checked
// here so the run aborts before anything is written.
func NewManager(dir string, manifest *Manifest, claim func(path string)) (*Manager, error) {
	if st, err := os.Stat(dir); err == nil && !st.IsDir() {
		return nil, fmt.Errorf("output path %s exists and is not a directory", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	if claim == nil {
		claim = func(string) {}
	}
	return &Manager{
		dir:      dir,
		manifest: manifest,
		claim:    claim,
		files:    map[string]*openFile{},
	}, nil
}

// Activate truncate-opens the target's file and retains the handle for
// later appends. Activating an already-open target is a no-op; the
// manifest entry is never duplicated. The file path is claimed so the
// reaper will not delete it.
func (m *Manager) Activate(t Target) error {
	name := t.FileName()
	if _, ok := m.files[name]; ok {
		return nil
	}
	path := filepath.Join(m.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	slog.Debug("activated output file", "file", path)
	m.files[name] = &openFile{f: f, hw: hash.NewWriter(f)}
	m.order = append(m.order, name)
	m.claim(path)
	return m.manifest.Record(name)
}

// Register records the target's manifest entry and claims its path
// without opening or truncating the file. Used in structure-only mode,
// where a table's existing data file must survive the run untouched but
// keep its place in the manifest.
func (m *Manager) Register(t Target) error {
	name := t.FileName()
	m.claim(filepath.Join(m.dir, name))
	return m.manifest.Record(name)
}

// Write appends text to the target's file. The target must have been
// activated this run.
func (m *Manager) Write(t Target, text string) error {
	name := t.FileName()
	of, ok := m.files[name]
	if !ok {
		return fmt.Errorf("write to inactive target %s", name)
	}
	if _, err := of.hw.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Join(m.dir, name), err)
	}
	return nil
}

// Touched reports whether the target was activated this run.
func (m *Manager) Touched(t Target) bool {
	_, ok := m.files[t.FileName()]
	return ok
}

// Written returns the files produced this run with their content
// digests, in first-activation order.
func (m *Manager) Written() []FileDigest {
	out := make([]FileDigest, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, FileDigest{Name: name, Digest: m.files[name].hw.Sum()})
	}
	return out
}

// Close flushes and closes every open file and the manifest. The first
// error wins; all files are closed regardless.
func (m *Manager) Close() error {
	var first error
	for _, name := range m.order {
		if err := m.files[name].f.Close(); err != nil && first == nil {
			first = fmt.Errorf("failed to close %s: %w", name, err)
		}
	}
	if err := m.manifest.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
