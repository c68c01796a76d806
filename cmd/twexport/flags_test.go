package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twexport/internal/config"
)

func TestLoadConfigFlagsOverrideDefaults(t *testing.T) {
	cfg, opts, err := loadConfig([]string{
		"-u", "me", "-p", "pw", "-d", "30", "-o", "/tmp/out", "-t", "sqlite",
		"-poll-interval", "2s", "-max-polls", "12", "-quiet",
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "me", cfg.Account.Username)
	assert.Equal(t, "me", cfg.AnalyticsAccount())
	assert.Equal(t, 30, cfg.Export.Days)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, config.OutputSQLite, cfg.Output.Type)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 12, cfg.Poll.MaxAttempts)
	assert.True(t, opts.quiet)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, _, err := loadConfig([]string{"-u", "me", "-p", "pw", "-a", "brand"}, io.Discard)
	require.NoError(t, err)
	wd, _ := os.Getwd()
	assert.Equal(t, 60, cfg.Export.Days)
	assert.Equal(t, wd, cfg.Output.Dir)
	assert.Equal(t, config.OutputCSV, cfg.Output.Type)
	assert.Equal(t, "brand", cfg.AnalyticsAccount())
}

func TestLoadConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twexport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  username: fromfile\noutput:\n  type: xlsx\n"), 0o644))
	t.Setenv("TWEXPORT_CREDENTIALS_PASSWORD", "envpw")

	cfg, _, err := loadConfig([]string{"-config", path, "-t", "csv"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.Account.Username)
	assert.Equal(t, "envpw", cfg.Credentials.Password)
	assert.Equal(t, config.OutputCSV, cfg.Output.Type)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twexport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  username: fromfile\nexport:\n  days: 14\noutput:\n  type: xlsx\n"), 0o644))
	t.Setenv("TWEXPORT_CREDENTIALS_PASSWORD", "envpw")
	t.Setenv("TWEXPORT_OUTPUT_TYPE", "sqlite")
	t.Setenv("TWEXPORT_EXPORT_DAYS", "21")

	// env beats the file
	cfg, _, err := loadConfig([]string{"-config", path}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.OutputSQLite, cfg.Output.Type)
	assert.Equal(t, 21, cfg.Export.Days)
	assert.Equal(t, "fromfile", cfg.Account.Username)

	// flags beat env
	cfg, _, err = loadConfig([]string{"-config", path, "-t", "csv"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.OutputCSV, cfg.Output.Type)
	assert.Equal(t, 21, cfg.Export.Days)
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	_, _, err := loadConfig([]string{"-d", "10"}, io.Discard)
	assert.Error(t, err)
	_, _, err = loadConfig([]string{"-u", "me", "-p", "pw", "-t", "json"}, io.Discard)
	assert.Error(t, err)
}

func TestArtifactLabel(t *testing.T) {
	assert.Equal(t, "CSV", artifactLabel(config.OutputCSV))
	assert.Equal(t, "Db file", artifactLabel(config.OutputSQLite))
	assert.Equal(t, "XLSX", artifactLabel(config.OutputXLSX))
}
