package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "task_dependency_agent", cfg.Agent.General.Name)
	assert.Equal(t, "sqlite", cfg.GetDatabaseType())
	assert.Equal(t, 8080, cfg.Agent.Server.Port)
	assert.Equal(t, 3, cfg.Agent.Oracle.MaxAttempts)
}

func TestLoad_ParsesYAMLAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	content := `
agent:
  general:
    name: custom_agent
  oracle:
    model: anthropic/claude-3
    timeout: 10s
  storage:
    database:
      type: postgres
      dsn: "host=localhost dbname=tasks"
  ltm:
    enabled: true
    file: /tmp/ltm.json
  server:
    port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom_agent", cfg.Agent.General.Name)
	assert.Equal(t, "anthropic/claude-3", cfg.Agent.Oracle.Model)
	assert.Equal(t, 10*time.Second, cfg.Agent.Oracle.Timeout)
	assert.Equal(t, "postgres", cfg.GetDatabaseType())
	assert.Equal(t, "host=localhost dbname=tasks", cfg.GetDatabaseDSN())
	assert.True(t, cfg.Agent.LTM.Enabled)
	assert.Equal(t, 9090, cfg.Agent.Server.Port)
	// 未配置项补默认值
	assert.Equal(t, "0.0.0.0", cfg.Agent.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Agent.Server.ReadTimeout)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent: [not: valid"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
