package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, DriverNone, cfg.Store.Driver)
	assert.Equal(t, "workspace/signals.db", cfg.Store.SQLitePath)
	assert.Equal(t, "workspace/logs/ingest_errors.jsonl", cfg.Ingest.IssueLog)
	assert.Equal(t, "signal_io", cfg.Metrics.Namespace)
	assert.Empty(t, cfg.Metrics.Textfile)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: json
store:
  driver: sqlite
  sqlite_path: /tmp/s.db
metrics:
  textfile: /tmp/signal_io.prom
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signal-io.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/s.db", cfg.Store.SQLitePath)
	assert.Equal(t, "/tmp/signal_io.prom", cfg.Metrics.Textfile)
	// Defaults still apply for unset values
	assert.Equal(t, "workspace/logs/ingest_errors.jsonl", cfg.Ingest.IssueLog)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signal-io.yaml"), []byte("store:\n  driver: sqlite\n"), 0o644))
	t.Setenv("SIGNALIO_STORE_DRIVER", "postgres")
	t.Setenv("SIGNALIO_STORE_DATABASE_URL", "postgres://u:p@localhost/signals")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://u:p@localhost/signals", cfg.Store.DatabaseURL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SIGNALIO_STORE_DRIVER", "mongodb")

	_, err := Load()
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestInitLogger(t *testing.T) {
	orig := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(orig) })

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.True(t, zap.L().Core().Enabled(zapcore.WarnLevel))
	assert.False(t, zap.L().Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
