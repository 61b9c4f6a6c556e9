package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"migrate", "seed", "recompute-ratings", "serve"})

	assert.NotNil(t, migrateCmd.Flags().Lookup("seed"))
	assert.NotNil(t, serveCmd.Flags().Lookup("skip-migrate"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
}

func TestMissingEnvFile(t *testing.T) {
	envFile = filepath.Join(t.TempDir(), "absent.env")
	t.Cleanup(func() { envFile = "" })

	err := rootCmd.PersistentPreRunE(seedCmd, nil)
	assert.ErrorContains(t, err, "env file")
}

func TestEnvFileAndLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bizctl.env")
	require.NoError(t, os.WriteFile(path, []byte("FEATURED_LIMIT=3\n"), 0o600))
	t.Setenv("FEATURED_LIMIT", "")
	os.Unsetenv("FEATURED_LIMIT")

	envFile, logLevel = path, "debug"
	t.Cleanup(func() { envFile, logLevel, cfg = "", "", nil })

	require.NoError(t, rootCmd.PersistentPreRunE(seedCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, 3, cfg.Listing.FeaturedLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
}
