package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
log:
  level: debug
  format: console
advisor:
  enabled: true
  endpoint: http://advisor.local/evaluate
  timeout: 2s
planning:
  reference_date: "2024-01-15"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Advisor.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Advisor.Timeout)
	assert.True(t, cfg.Planning.SeedDemo)

	ref, err := cfg.Planning.Reference()
	require.NoError(t, err)
	assert.Equal(t, entities.MustParseDay("2024-01-15"), ref)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PLANNING_AUTO_PLAN_ALL_OR_NOTHING", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Planning.AutoPlanAllOrNothing)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad port", "server:\n  port: 70000\n", "invalid server.port"},
		{"bad mode", "server:\n  mode: fast\n", "invalid server.mode"},
		{"bad reference date", "planning:\n  reference_date: tomorrow\n", "invalid planning.reference_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
