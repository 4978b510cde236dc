package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *Manifest, string, *[]string) {
	t.Helper()
	base := t.TempDir()
	dir := filepath.Join(base, "shop")
	manifest := NewManifest(filepath.Join(base, "dump.sql"), "shop", "")
	var claimed []string
	mgr, err := NewManager(dir, manifest, func(path string) { claimed = append(claimed, path) })
	require.NoError(t, err)
	return mgr, manifest, dir, &claimed
}

func TestActivateTruncatesAndAppends(t *testing.T) {
	mgr, _, dir, _ := newTestManager(t)
	target := Target{Kind: Structure, Table: "accounts"}

	// Pre-existing content must be discarded by activation.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts.sql"), []byte("old content\n"), 0o644))

	require.NoError(t, mgr.Activate(target))
	require.NoError(t, mgr.Write(target, "line one\n"))
	require.NoError(t, mgr.Write(target, "line two\n"))
	require.NoError(t, mgr.Close())

	data, err := os.ReadFile(filepath.Join(dir, "accounts.sql"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}

func TestActivateIsIdempotent(t *testing.T) {
	mgr, manifest, _, _ := newTestManager(t)
	target := Target{Kind: Data, Table: "accounts"}

	require.NoError(t, mgr.Activate(target))
	require.NoError(t, mgr.Write(target, "first\n"))
	// A second activation must not truncate or duplicate the manifest entry.
	require.NoError(t, mgr.Activate(target))
	require.NoError(t, mgr.Write(target, "second\n"))
	require.NoError(t, mgr.Close())

	assert.Equal(t, []string{"shop/accounts.data.sql"}, manifest.Entries())
}

func TestWriteInactiveTargetFails(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	err := mgr.Write(Target{Kind: Tail}, "text\n")
	assert.Error(t, err)
}

func TestRegisterClaimsWithoutTouching(t *testing.T) {
	mgr, manifest, dir, claimed := newTestManager(t)
	target := Target{Kind: Data, Table: "orders"}
	path := filepath.Join(dir, "orders.data.sql")
	require.NoError(t, os.WriteFile(path, []byte("precious data\n"), 0o644))

	require.NoError(t, mgr.Register(target))
	require.NoError(t, mgr.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "precious data\n", string(data))
	assert.Contains(t, *claimed, path)
	assert.Equal(t, []string{"shop/orders.data.sql"}, manifest.Entries())
	assert.False(t, mgr.Touched(target))
}

func TestOutputDirConflictFatal(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "shop")
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o644))

	_, err := NewManager(dir, NewManifest(filepath.Join(base, "dump.sql"), "shop", ""), nil)
	assert.Error(t, err)
}

func TestWrittenDigestsInActivationOrder(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	require.NoError(t, mgr.Activate(Target{Kind: Head}))
	require.NoError(t, mgr.Activate(Target{Kind: Structure, Table: "accounts"}))
	require.NoError(t, mgr.Write(Target{Kind: Head}, "header\n"))
	require.NoError(t, mgr.Close())

	written := mgr.Written()
	require.Len(t, written, 2)
	assert.Equal(t, "head.sql", written[0].Name)
	assert.Equal(t, "accounts.sql", written[1].Name)
	assert.Len(t, written[0].Digest, 64)
}

func TestManifestPreambleAndOrder(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "dump.sql")
	manifest := NewManifest(path, "shop", "-- assembled by splitdump")

	require.NoError(t, manifest.Record("head.sql"))
	require.NoError(t, manifest.Record("accounts.sql"))
	require.NoError(t, manifest.Record("head.sql")) // duplicate, ignored
	require.NoError(t, manifest.Record("accounts.data.sql"))
	require.NoError(t, manifest.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"-- assembled by splitdump\n"+
			"source shop/head.sql\n"+
			"source shop/accounts.sql\n"+
			"source shop/accounts.data.sql\n",
		string(data))
}

func TestManifestTruncatesPreviousRun(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "dump.sql")
	require.NoError(t, os.WriteFile(path, []byte("source shop/stale.sql\n"), 0o644))

	manifest := NewManifest(path, "shop", "")
	require.NoError(t, manifest.Record("head.sql"))
	require.NoError(t, manifest.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "source shop/head.sql\n", string(data))
}

func TestTargetFileNames(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{Target{Kind: Head}, "head.sql"},
		{Target{Kind: Tail}, "tail.sql"},
		{Target{Kind: Structure, Table: "accounts"}, "accounts.sql"},
		{Target{Kind: Data, Table: "accounts"}, "accounts.data.sql"},
		{Target{Kind: Chunk, Table: "accounts", Seq: 1}, "accounts.0000000001.data.sql"},
		{Target{Kind: Chunk, Table: "accounts", Seq: 12}, "accounts.0000000012.data.sql"},
		{Target{Kind: Aux, Table: "accounts", Seq: 3}, "accounts.0003.aux.sql"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.target.FileName())
	}
}
