// Package common is the shared contract layer every tool builds on:
// dependency wiring, argument validation helpers, the error envelope, and
// the Markdown response shaper. Tools compose these helpers; there is no
// inheritance tree.
package common

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marco-looy/pega-dx-mcp/internal/config"
	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
)

// Deps carries what every tool needs: the shared DX client and the
// process-wide default credentials. One Deps value is built at startup and
// handed to every tool constructor.
type Deps struct {
	Client   *dx.Client
	Defaults config.Credentials
	Logger   *slog.Logger
}

// SessionArgs is embedded in every tool's params struct so any call may
// override the process credentials for just that invocation.
type SessionArgs struct {
	SessionCredentials *config.Credentials `json:"sessionCredentials,omitempty"`
}

// Resolve merges the defaults with the invocation's override into an
// immutable session for this call.
func (d *Deps) Resolve(s SessionArgs) (*dx.Session, error) {
	return config.Resolve(d.Defaults, s.SessionCredentials)
}

// SessionCredentialsProperty is the schema fragment for the
// sessionCredentials argument. Tool schemas splice it into their
// properties object so the catalog documents the override uniformly.
const SessionCredentialsProperty = `"sessionCredentials": {
      "type": "object",
      "description": "Optional per-call Pega credentials overriding the server defaults. Scoped to this invocation only.",
      "properties": {
        "baseURL": {"type": "string", "description": "Infinity application URL ending in /prweb"},
        "tokenURL": {"type": "string", "description": "OAuth2 token endpoint; derived from baseURL when omitted"},
        "clientID": {"type": "string"},
        "clientSecret": {"type": "string"}
      }
    }`

// ParseParams unmarshals raw tool arguments into P. Unknown fields are
// ignored; a malformed document yields a validation error result.
func ParseParams[P any](raw json.RawMessage) (*P, *mcp.ToolsCallResult) {
	var p P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err))
		}
	}
	return &p, nil
}

// Field pairs an argument name with its trimmed string value for required
// checks.
type Field struct {
	Name  string
	Value string
}

// MissingRequired returns a validation message naming the first absent or
// empty field, or "" when all are present. Validation always runs before
// any credential or upstream work.
func MissingRequired(fields ...Field) string {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return f.Name + " is required"
		}
	}
	return ""
}

// EnumViolation returns a validation message when value is set and outside
// the allowed list, or "" otherwise. Empty values pass: optionality is the
// job of MissingRequired.
func EnumViolation(name, value string, allowed ...string) string {
	if value == "" {
		return ""
	}
	for _, a := range allowed {
		if value == a {
			return ""
		}
	}
	return fmt.Sprintf("%s must be one of %s", name, strings.Join(allowed, ", "))
}

// ValidationError wraps a validation message as the tool-result error
// shape. The message also carries the INVALID_ARGUMENT tag so clients can
// classify without parsing prose.
func ValidationError(msg string) *mcp.ToolsCallResult {
	return mcp.ErrorResult(string(dx.KindInvalidArgument) + ": " + msg)
}

// ConfigError shapes a config resolution failure. Like validation, it is
// produced before any upstream traffic.
func ConfigError(err error) *mcp.ToolsCallResult {
	return mcp.ErrorResult(err.Error())
}
