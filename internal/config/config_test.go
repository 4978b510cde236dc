package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("splitdump", pflag.ContinueOnError)
	flags.String("output", "dump.sql", "")
	flags.String("database", "dump", "")
	flags.String("table", "", "")
	flags.Bool("force", false, "")
	flags.Bool("structure-only", false, "")
	flags.String("preamble", "", "")
	flags.Int("chunk-size", 10000, "")
	flags.String("summary", "", "")
	flags.Bool("verbose", false, "")
	flags.String("log-dir", "", "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags())
	require.NoError(t, err)

	assert.Equal(t, "dump.sql", cfg.Output)
	assert.Equal(t, "dump", cfg.Database)
	assert.Equal(t, "", cfg.Table)
	assert.False(t, cfg.Force)
	assert.False(t, cfg.StructureOnly)
	assert.Equal(t, 10000, cfg.ChunkSize)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SPLITDUMP_DATABASE", "shop")
	t.Setenv("SPLITDUMP_CHUNK_SIZE", "500")

	cfg, err := Load(newFlags())
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.Database)
	assert.Equal(t, 500, cfg.ChunkSize)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SPLITDUMP_DATABASE", "shop")

	flags := newFlags()
	require.NoError(t, flags.Set("database", "billing"))
	require.NoError(t, flags.Set("structure-only", "true"))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.Database)
	assert.True(t, cfg.StructureOnly)
}

func TestLoadRejectsBadValues(t *testing.T) {
	flags := newFlags()
	require.NoError(t, flags.Set("chunk-size", "0"))
	_, err := Load(flags)
	assert.Error(t, err)

	flags = newFlags()
	require.NoError(t, flags.Set("database", ""))
	_, err = Load(flags)
	assert.Error(t, err)
}

func TestLoadWithoutFlags(t *testing.T) {
	// Missing flags fall through to env and defaults.
	cfg, err := Load(pflag.NewFlagSet("empty", pflag.ContinueOnError))
	require.NoError(t, err)
	assert.Equal(t, "dump.sql", cfg.Output)
}
