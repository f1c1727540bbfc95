package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "bridge", cfg.Backend)
	assert.Equal(t, "http://localhost:3001", cfg.BridgeURL)
	assert.Equal(t, "./werkbank.db", cfg.DBPath)
	assert.Equal(t, "./projects", cfg.ProjectsRoot)
	assert.Equal(t, "claude", cfg.DefaultProvider)
	assert.Equal(t, 1800, cfg.SandboxTTLSeconds)
	assert.Equal(t, 300000, cfg.CommandTimeoutMs)
	assert.Equal(t, 3000, cfg.PreviewPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1.0, cfg.Docker.CPULimit)
	assert.Equal(t, 1024, cfg.Docker.MemLimitMB)
}

func TestLoadYAML(t *testing.T) {
	yamlContent := `
listen: "0.0.0.0:9090"
api_key: "sk-test"
backend: "docker"
bridge_url: "http://bridge.internal:3001"
sandbox_ttl_seconds: 3600
command_timeout_ms: 600000
docker:
  image: "werkbank-runtime:node"
  cpu_limit: 2.0
  mem_limit_mb: 2048
`
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "test.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlContent), 0644))

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Listen)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "docker", cfg.Backend)
	assert.Equal(t, "http://bridge.internal:3001", cfg.BridgeURL)
	assert.Equal(t, 3600, cfg.SandboxTTLSeconds)
	assert.Equal(t, 600000, cfg.CommandTimeoutMs)
	assert.Equal(t, "werkbank-runtime:node", cfg.Docker.Image)
	assert.Equal(t, 2.0, cfg.Docker.CPULimit)
	assert.Equal(t, 2048, cfg.Docker.MemLimitMB)
}

func TestLoadYAMLMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	// Non-existent file is not an error (silently uses defaults)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("{{{{invalid yaml"), 0644))

	_, err := Load(yamlPath)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WERKBANK_LISTEN", "0.0.0.0:7777")
	t.Setenv("WERKBANK_API_KEY", "env-key")
	t.Setenv("WERKBANK_BACKEND", "Docker")
	t.Setenv("WERKBANK_BRIDGE_URL", "http://other:3001")
	t.Setenv("WERKBANK_DB_PATH", "/tmp/test.db")
	t.Setenv("WERKBANK_SANDBOX_TTL_SECONDS", "600")
	t.Setenv("WERKBANK_PREVIEW_PORT", "4000")
	t.Setenv("WERKBANK_LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7777", cfg.Listen)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "docker", cfg.Backend)
	assert.Equal(t, "http://other:3001", cfg.BridgeURL)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 600, cfg.SandboxTTLSeconds)
	assert.Equal(t, 4000, cfg.PreviewPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverridesInvalidNumbersIgnored(t *testing.T) {
	t.Setenv("WERKBANK_SANDBOX_TTL_SECONDS", "not-a-number")
	t.Setenv("WERKBANK_PREVIEW_PORT", "also-not")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1800, cfg.SandboxTTLSeconds)
	assert.Equal(t, 3000, cfg.PreviewPort)
}
