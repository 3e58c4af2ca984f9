package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
)

// tokenPathSuffix is appended to the base URL when no token URL is
// configured. The base URL is the Infinity /prweb root, so the derived
// endpoint is the platform's standard OAuth2 token service.
const tokenPathSuffix = "/PRRestService/oauth2/v1/token"

// apiPathSuffix turns the /prweb root into the DX API v2 root.
const apiPathSuffix = "/api/application/v2"

// Credentials is one credential set: either the process defaults or a
// per-invocation sessionCredentials override. The JSON tags match the
// sessionCredentials argument accepted by every tool.
type Credentials struct {
	BaseURL      string `json:"baseURL,omitempty"`
	TokenURL     string `json:"tokenURL,omitempty"`
	ClientID     string `json:"clientID,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// Resolve merges the process defaults with an optional per-invocation
// override into an immutable session. Supplied override fields replace the
// defaults; missing ones fall through. The result is never written back to
// either input.
func Resolve(defaults Credentials, override *Credentials) (*dx.Session, error) {
	merged := defaults
	mode, source := "shared", "env"
	if override != nil {
		mode, source = "session", "request"
		if override.BaseURL != "" {
			merged.BaseURL = override.BaseURL
			// A base URL override invalidates an inherited token URL: the
			// override points at a different deployment.
			if override.TokenURL == "" {
				merged.TokenURL = ""
			}
		}
		if override.TokenURL != "" {
			merged.TokenURL = override.TokenURL
		}
		if override.ClientID != "" {
			merged.ClientID = override.ClientID
		}
		if override.ClientSecret != "" {
			merged.ClientSecret = override.ClientSecret
		}
	}

	base := strings.TrimRight(merged.BaseURL, "/")
	if base == "" {
		return nil, dx.NewError(dx.KindConfigInvalid, "no base URL: configure PEGA_BASE_URL or pass sessionCredentials.baseURL")
	}
	if merged.ClientID == "" {
		return nil, dx.NewError(dx.KindConfigInvalid, "no client ID: configure PEGA_CLIENT_ID or pass sessionCredentials.clientID")
	}
	if merged.ClientSecret == "" {
		return nil, dx.NewError(dx.KindConfigInvalid, "no client secret: configure PEGA_CLIENT_SECRET or pass sessionCredentials.clientSecret")
	}

	tokenURL := merged.TokenURL
	if tokenURL == "" {
		tokenURL = base + tokenPathSuffix
	}

	return &dx.Session{
		APIBase:      base + apiPathSuffix,
		TokenURL:     tokenURL,
		ClientID:     merged.ClientID,
		ClientSecret: merged.ClientSecret,
		Fingerprint:  fingerprint(tokenURL, merged.ClientID, merged.ClientSecret),
		SessionID:    uuid.NewString(),
		AuthMode:     mode,
		Source:       source,
	}, nil
}

// fingerprint hashes the credential triple that determines token identity.
// Sessions with equal fingerprints share one cached token.
func fingerprint(tokenURL, clientID, clientSecret string) string {
	h := sha256.New()
	h.Write([]byte(tokenURL))
	h.Write([]byte{0})
	h.Write([]byte(clientID))
	h.Write([]byte{0})
	h.Write([]byte(clientSecret))
	return hex.EncodeToString(h.Sum(nil))
}
