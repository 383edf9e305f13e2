package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  name: powermcp-test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "powermcp-test", cfg.Service.Name)
	assert.Equal(t, "INFO", cfg.Service.LogLevel)
	assert.Equal(t, "./store", cfg.Store.Dir)
	assert.Equal(t, 30*24*time.Hour, cfg.Store.RunRetention)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, "127.0.0.1:8787", cfg.API.Listen)
	assert.NotNil(t, cfg.Engines)
}

func TestLoadDerivedStorePaths(t *testing.T) {
	path := writeConfig(t, `
store:
  dir: /var/lib/powermcp
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/var/lib/powermcp", "powermcp.db"), cfg.Store.DBPath)
	assert.Equal(t, filepath.Join("/var/lib/powermcp", "powermcp.lock"), cfg.Store.LockPath)
}

func TestLoadEngineBridge(t *testing.T) {
	path := writeConfig(t, `
engines:
  psse:
    enabled: true
    bridge:
      interpreter: /opt/python27/bin/python
      entrypoint: /opt/psse/bridge_worker.py
      timeout: 2m
      env:
        PSSE_HOME: /opt/psse
  pslf:
    enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	psse := cfg.Engines["psse"]
	require.NotNil(t, psse.Bridge)
	assert.True(t, psse.Enabled)
	assert.Equal(t, "/opt/python27/bin/python", psse.Bridge.Interpreter)
	assert.Equal(t, 2*time.Minute, psse.Bridge.Timeout)
	assert.Equal(t, "/opt/psse", psse.Bridge.Env["PSSE_HOME"])
	assert.False(t, cfg.Engines["pslf"].Enabled)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("POWERMCP_TEST_ROOT", "/data/engines")

	path := writeConfig(t, `
engines:
  andes:
    enabled: true
    bridge:
      entrypoint: ${POWERMCP_TEST_ROOT}/andes_worker.py
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/engines/andes_worker.py", cfg.Engines["andes"].Bridge.Entrypoint)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "bad log level",
			content: `
service:
  log_level: VERBOSE
`,
			wantErr: "log_level",
		},
		{
			name: "enabled engine without bridge",
			content: `
engines:
  opendss:
    enabled: true
`,
			wantErr: "no bridge section",
		},
		{
			name: "enabled engine without entrypoint",
			content: `
engines:
  opendss:
    enabled: true
    bridge:
      interpreter: python3
`,
			wantErr: "entrypoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}
