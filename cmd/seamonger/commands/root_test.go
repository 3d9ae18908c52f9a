package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath_FlagWins(t *testing.T) {
	t.Setenv(configEnv, "/from/env.json")
	configPath = "/from/flag.yaml"
	t.Cleanup(func() { configPath = "" })

	assert.Equal(t, "/from/flag.yaml", resolveConfigPath())
}

func TestResolveConfigPath_Env(t *testing.T) {
	t.Setenv(configEnv, "/from/env.json")

	assert.Equal(t, "/from/env.json", resolveConfigPath())
}

// chdirTemp moves the test into an empty directory so no stray config is discovered.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestDiscoverConfig_WorkingDirectory(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("db_path: x.db\n"), 0o644))

	assert.Equal(t, "config.yaml", discoverConfig())
}

func TestDiscoverConfig_NothingFound(t *testing.T) {
	chdirTemp(t)
	assert.Empty(t, discoverConfig())
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "poll", "suppliers", "parse"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-01-01)", rootCmd.Version)
}
