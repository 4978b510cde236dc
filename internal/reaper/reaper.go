// Package reaper reconciles the output directory against the files a
// run actually produces. It snapshots matching files before the pass,
// collects claims as targets are touched, and deletes whatever was never
// claimed — gated by an injected confirmation.
package reaper

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ConfirmFunc answers whether stale files under dir may be deleted.
// candidates is the snapshot size. It must return a real boolean; only
// an explicit affirmative permits deletion.
type ConfirmFunc func(dir string, candidates int) bool

// Reaper tracks deletion candidates for one run.
type Reaper struct {
	dir        string
	candidates map[string]bool // path -> claimed
}

// Snapshot lists the regular files in dir whose base names match the
// table filter and records them as unclaimed deletion candidates. An
// empty table filter matches everything; a filter without glob
// metacharacters is treated as a table name and matches "<table>*".
// A missing directory yields an empty snapshot.
func Snapshot(dir, table string) (*Reaper, error) {
	pattern := "*"
	if table != "" {
		pattern = table
		if !hasGlobMeta(table) {
			pattern = table + "*"
		}
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid table filter pattern %q", pattern)
	}

	r := &Reaper{dir: dir, candidates: map[string]bool{}}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to list output directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to match %q against %q: %w", e.Name(), pattern, err)
		}
		if ok {
			r.candidates[filepath.Join(dir, e.Name())] = false
		}
	}
	slog.Debug("snapshotted output directory", "dir", dir, "pattern", pattern, "candidates", len(r.candidates))
	return r, nil
}

// Candidates returns the number of snapshotted paths.
func (r *Reaper) Candidates() int {
	return len(r.candidates)
}

// Confirm resolves the deletion gate. force auto-confirms, and an empty
// snapshot needs no answer since nothing could be deleted. Returns false
// when the run must abort with no changes made.
func (r *Reaper) Confirm(force bool, confirm ConfirmFunc) bool {
	if force || len(r.candidates) == 0 {
		return true
	}
	return confirm(r.dir, len(r.candidates))
}

// Claim marks a path as produced by this run so it survives reaping.
// Paths outside the snapshot are ignored.
func (r *Reaper) Claim(path string) {
	if _, ok := r.candidates[path]; ok {
		r.candidates[path] = true
	}
}

// Reap deletes every unclaimed candidate that still exists and returns
// the deleted paths, sorted.
func (r *Reaper) Reap() ([]string, error) {
	var deleted []string
	for path, claimed := range r.candidates {
		if claimed {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return deleted, fmt.Errorf("failed to delete stale file %s: %w", path, err)
		}
		slog.Info("deleted stale file", "file", path)
		deleted = append(deleted, path)
	}
	sort.Strings(deleted)
	return deleted, nil
}

func hasGlobMeta(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
