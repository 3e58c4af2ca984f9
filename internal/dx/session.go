package dx

// Session is the effective per-invocation configuration threaded explicitly
// through every client call. It is created by the config resolver, never
// mutated afterwards, and dropped when the invocation returns. Two sessions
// with the same Fingerprint share one cached token; everything else about
// them is independent.
type Session struct {
	// APIBase is the DX API root, e.g. https://host/prweb/api/application/v2.
	APIBase string

	// TokenURL is the OAuth2 client-credentials endpoint.
	TokenURL string

	ClientID     string
	ClientSecret string

	// Fingerprint is a stable hash over (TokenURL, ClientID, ClientSecret).
	// It keys the token cache.
	Fingerprint string

	// Diagnostics tags. Never used for request construction.
	SessionID string // unique per resolution
	AuthMode  string // "shared" (process defaults) or "session" (override)
	Source    string // "env" or "request"
}
