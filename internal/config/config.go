package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the gateway server.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Pega      PegaConfig      `toml:"pega"`
	Server    ServerConfig    `toml:"server"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`
	HTTP      HTTPConfig      `toml:"http"`
}

// PegaConfig holds the process-wide default DX connection details.
type PegaConfig struct {
	// BaseURL is the Infinity application URL ending in /prweb.
	BaseURL string `toml:"base_url"`
	// TokenURL is the OAuth2 token endpoint. Derived from BaseURL when empty.
	TokenURL     string `toml:"token_url"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Mode selects the transport: "stdio" (default) or "http".
	Mode string `toml:"mode"`
	// Port is the HTTP listen port. Only used when Mode is "http".
	Port string `toml:"port"`
	// Host is the HTTP listen address. Only used when Mode is "http".
	Host string `toml:"host"`
	// CORSOrigins is a comma-separated list of allowed CORS origins.
	CORSOrigins string `toml:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// HTTPConfig holds outbound HTTP settings for the DX client.
type HTTPConfig struct {
	// TimeoutSeconds bounds every outbound DX and token call.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `toml:"proxy"`
	// InsecureSkipVerify disables TLS verification. Test rigs only.
	InsecureSkipVerify bool `toml:"insecure_skip_verify"`
}

// Timeout returns the configured outbound deadline.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. PEGA_DX_MCP_CONFIG environment variable
//  3. ./pega-dx-mcp.toml (current directory)
//  4. ~/.config/pega-dx-mcp/pega-dx-mcp.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables always
// override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Name:    "pega-dx-mcp",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Mode:        "stdio",
			Port:        "21453",
			Host:        "0.0.0.0",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil // no config file found; rely on defaults + env
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath determines which config file to use. Returns empty
// string if no config file is found.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}
	if p := os.Getenv("PEGA_DX_MCP_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("pega-dx-mcp.toml"); err == nil {
		return "pega-dx-mcp.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/pega-dx-mcp/pega-dx-mcp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("PEGA_BASE_URL", &c.Pega.BaseURL)
	envOverride("PEGA_TOKEN_URL", &c.Pega.TokenURL)
	envOverride("PEGA_CLIENT_ID", &c.Pega.ClientID)
	envOverride("PEGA_CLIENT_SECRET", &c.Pega.ClientSecret)

	envOverride("PEGA_DX_MCP_TRANSPORT", &c.Transport.Mode)
	envOverride("PEGA_DX_MCP_PORT", &c.Transport.Port)
	envOverride("PEGA_DX_MCP_HOST", &c.Transport.Host)
	envOverride("PEGA_DX_MCP_CORS_ORIGINS", &c.Transport.CORSOrigins)

	envOverride("PEGA_DX_MCP_LOG_LEVEL", &c.Log.Level)
	envOverride("PEGA_DX_MCP_PROXY", &c.HTTP.Proxy)

	if v := os.Getenv("PEGA_DX_MCP_TIMEOUT_SECONDS"); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
			c.HTTP.TimeoutSeconds = secs
		}
	}
}

// Validate checks that required fields are present. Credentials may be
// omitted entirely only in HTTP mode, where every call is expected to carry
// sessionCredentials.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio":
		if c.Pega.BaseURL == "" {
			return fmt.Errorf("pega base_url is required for stdio mode: set pega.base_url in config file, or PEGA_BASE_URL env var")
		}
		if c.Pega.ClientID == "" || c.Pega.ClientSecret == "" {
			return fmt.Errorf("pega client credentials are required for stdio mode: set pega.client_id / pega.client_secret, or PEGA_CLIENT_ID / PEGA_CLIENT_SECRET env vars")
		}
	case "http":
		// HTTP mode may serve clients that pass sessionCredentials per call.
	default:
		return fmt.Errorf("invalid transport mode: %q (must be \"stdio\" or \"http\")", c.Transport.Mode)
	}
	return nil
}

// Credentials returns the process-wide default credential set used by the
// resolver.
func (c *Config) Credentials() Credentials {
	return Credentials{
		BaseURL:      c.Pega.BaseURL,
		TokenURL:     c.Pega.TokenURL,
		ClientID:     c.Pega.ClientID,
		ClientSecret: c.Pega.ClientSecret,
	}
}

// envOverride sets *dst to the value of the named env var, if non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
