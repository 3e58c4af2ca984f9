package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pega-dx-mcp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[pega]
base_url = "https://file.example.com/prweb"
client_id = "file-id"
client_secret = "file-secret"

[log]
level = "debug"
`), 0o600))

	t.Setenv("PEGA_BASE_URL", "https://env.example.com/prweb")
	t.Setenv("PEGA_CLIENT_ID", "")
	t.Setenv("PEGA_CLIENT_SECRET", "")
	t.Setenv("PEGA_TOKEN_URL", "")
	t.Setenv("PEGA_DX_MCP_TRANSPORT", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://env.example.com/prweb", cfg.Pega.BaseURL)
	require.Equal(t, "file-id", cfg.Pega.ClientID)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, 30, cfg.HTTP.TimeoutSeconds)
}

func TestLoad_StdioModeRequiresCredentials(t *testing.T) {
	t.Setenv("PEGA_BASE_URL", "https://env.example.com/prweb")
	t.Setenv("PEGA_CLIENT_ID", "")
	t.Setenv("PEGA_CLIENT_SECRET", "")
	t.Setenv("PEGA_DX_MCP_TRANSPORT", "")
	t.Setenv("PEGA_DX_MCP_CONFIG", "")

	_, err := Load(emptyConfigFile(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "client credentials")
}

func TestLoad_HTTPModeAllowsMissingCredentials(t *testing.T) {
	t.Setenv("PEGA_BASE_URL", "")
	t.Setenv("PEGA_CLIENT_ID", "")
	t.Setenv("PEGA_CLIENT_SECRET", "")
	t.Setenv("PEGA_DX_MCP_TRANSPORT", "http")

	cfg, err := Load(emptyConfigFile(t))
	require.NoError(t, err)
	require.Equal(t, "http", cfg.Transport.Mode)
}

func TestLoad_InvalidTransportRejected(t *testing.T) {
	t.Setenv("PEGA_DX_MCP_TRANSPORT", "carrier-pigeon")
	_, err := Load(emptyConfigFile(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid transport mode")
}

func TestLoad_TimeoutFromEnv(t *testing.T) {
	t.Setenv("PEGA_DX_MCP_TRANSPORT", "http")
	t.Setenv("PEGA_DX_MCP_TIMEOUT_SECONDS", "90")

	cfg, err := Load(emptyConfigFile(t))
	require.NoError(t, err)
	require.Equal(t, 90, cfg.HTTP.TimeoutSeconds)
}

// emptyConfigFile writes an empty TOML file so Load exercises defaults and
// env without touching the host's real config search path.
func emptyConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pega-dx-mcp.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}
