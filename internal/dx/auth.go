package dx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// tokenExpirySkew is subtracted from a token's lifetime so we never present
// a token that expires mid-request.
const tokenExpirySkew = 30 * time.Second

// tokenEntry is a successfully acquired bearer token. Partial tokens are
// never stored; an entry exists only after the exchange completed.
type tokenEntry struct {
	accessToken string
	tokenType   string
	acquiredAt  time.Time
	expiresAt   time.Time
}

func (t tokenEntry) valid(now time.Time) bool {
	return t.accessToken != "" && now.Add(tokenExpirySkew).Before(t.expiresAt)
}

// tokenCache holds bearer tokens keyed by session fingerprint and serializes
// concurrent refreshes so at most one exchange per fingerprint is in flight.
type tokenCache struct {
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu     sync.RWMutex
	tokens map[string]tokenEntry
	group  singleflight.Group
}

func newTokenCache(httpClient *http.Client, logger *slog.Logger) *tokenCache {
	return &tokenCache{
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
		tokens:     make(map[string]tokenEntry),
	}
}

// acquire returns a valid bearer token for the session, exchanging client
// credentials with the token endpoint when no valid cached token exists.
// Concurrent callers sharing a fingerprint coalesce onto one exchange and
// all receive its outcome.
func (c *tokenCache) acquire(ctx context.Context, sess *Session) (string, error) {
	c.mu.RLock()
	entry, ok := c.tokens[sess.Fingerprint]
	c.mu.RUnlock()
	if ok && entry.valid(c.now()) {
		return entry.accessToken, nil
	}

	v, err, _ := c.group.Do(sess.Fingerprint, func() (any, error) {
		// Recheck under the flight: a waiter may arrive after the winner
		// already installed a fresh token.
		c.mu.RLock()
		entry, ok := c.tokens[sess.Fingerprint]
		c.mu.RUnlock()
		if ok && entry.valid(c.now()) {
			return entry.accessToken, nil
		}
		return c.exchange(ctx, sess)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// exchange performs the OAuth2 client-credentials grant and installs the
// result. Nothing is cached on failure.
func (c *tokenCache) exchange(ctx context.Context, sess *Session) (string, error) {
	cfg := &clientcredentials.Config{
		ClientID:     sess.ClientID,
		ClientSecret: sess.ClientSecret,
		TokenURL:     sess.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// Route the exchange through the shared pooled client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	start := c.now()
	tok, err := cfg.Token(ctx)
	if err != nil {
		return "", authError(err)
	}

	entry := tokenEntry{
		accessToken: tok.AccessToken,
		tokenType:   tok.TokenType,
		acquiredAt:  start,
		expiresAt:   tok.Expiry,
	}
	c.mu.Lock()
	c.tokens[sess.Fingerprint] = entry
	c.mu.Unlock()

	c.logger.Debug("acquired access token",
		"fingerprint", shortFingerprint(sess.Fingerprint),
		"auth_mode", sess.AuthMode,
		"expires_at", entry.expiresAt,
	)
	return entry.accessToken, nil
}

// invalidate drops the cached token for the session and forgets any
// completed flight so the next acquire performs a fresh exchange.
func (c *tokenCache) invalidate(sess *Session) {
	c.mu.Lock()
	delete(c.tokens, sess.Fingerprint)
	c.mu.Unlock()
	c.group.Forget(sess.Fingerprint)
}

// authError maps an OAuth2 exchange failure to AUTH_FAILED, carrying the
// provider's status and response when available.
func authError(err error) *Error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		msg := strings.TrimSpace(string(rerr.Body))
		if msg == "" {
			msg = rerr.Response.Status
		}
		return &Error{
			Kind:    KindAuthFailed,
			Message: "token endpoint rejected client credentials: " + msg,
			Status:  rerr.Response.StatusCode,
			Cause:   err,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "token exchange timed out", Cause: err}
	}
	return &Error{Kind: KindAuthFailed, Message: "token exchange failed: " + err.Error(), Cause: err}
}

// shortFingerprint truncates a fingerprint for log output.
func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
