package dx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTokenStub serves the OAuth2 client-credentials exchange and counts
// calls. expiresIn controls the lifetime of issued tokens.
func newTokenStub(t *testing.T, expiresIn int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.FormValue("grant_type"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "exchange must use Basic auth")
		require.NotEmpty(t, user)
		require.NotEmpty(t, pass)

		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":%d}`, n, expiresIn)
	}))
}

func testSession(tokenURL string) *Session {
	return &Session{
		APIBase:      "http://unused.invalid/api/application/v2",
		TokenURL:     tokenURL,
		ClientID:     "client",
		ClientSecret: "secret",
		Fingerprint:  "fp-" + tokenURL,
		AuthMode:     "shared",
		Source:       "env",
	}
}

func TestTokenCache_AcquireCachesUntilExpiry(t *testing.T) {
	var calls atomic.Int32
	stub := newTokenStub(t, 3600, &calls)
	defer stub.Close()

	cache := newTokenCache(stub.Client(), slog.Default())
	sess := testSession(stub.URL)

	tok1, err := cache.acquire(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, tok1)

	tok2, err := cache.acquire(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, tok1, tok2)
	require.Equal(t, int32(1), calls.Load(), "second acquire must hit the cache")
}

func TestTokenCache_ExpirySkewForcesRefresh(t *testing.T) {
	var calls atomic.Int32
	// 10s lifetime is inside the 30s skew, so the token is never valid.
	stub := newTokenStub(t, 10, &calls)
	defer stub.Close()

	cache := newTokenCache(stub.Client(), slog.Default())
	sess := testSession(stub.URL)

	_, err := cache.acquire(context.Background(), sess)
	require.NoError(t, err)
	_, err = cache.acquire(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestTokenCache_InvalidateForcesNewExchange(t *testing.T) {
	var calls atomic.Int32
	stub := newTokenStub(t, 3600, &calls)
	defer stub.Close()

	cache := newTokenCache(stub.Client(), slog.Default())
	sess := testSession(stub.URL)

	tok1, err := cache.acquire(context.Background(), sess)
	require.NoError(t, err)

	cache.invalidate(sess)

	tok2, err := cache.acquire(context.Background(), sess)
	require.NoError(t, err)
	require.NotEqual(t, tok1, tok2)
	require.Equal(t, int32(2), calls.Load())
}

func TestTokenCache_ConcurrentAcquiresCoalesce(t *testing.T) {
	var calls atomic.Int32
	stub := newTokenStub(t, 3600, &calls)
	defer stub.Close()

	cache := newTokenCache(stub.Client(), slog.Default())
	sess := testSession(stub.URL)

	const n = 10
	var wg sync.WaitGroup
	tokens := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.acquire(context.Background(), sess)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, tokens[0], tokens[i])
	}
	require.Equal(t, int32(1), calls.Load(), "concurrent refreshes must coalesce into one exchange")
}

func TestTokenCache_DistinctFingerprintsAreIndependent(t *testing.T) {
	var calls atomic.Int32
	stub := newTokenStub(t, 3600, &calls)
	defer stub.Close()

	cache := newTokenCache(stub.Client(), slog.Default())
	a := testSession(stub.URL)
	b := testSession(stub.URL)
	b.Fingerprint = "fp-other"

	_, err := cache.acquire(context.Background(), a)
	require.NoError(t, err)
	_, err = cache.acquire(context.Background(), b)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestTokenCache_FailedExchangeNotCached(t *testing.T) {
	var calls atomic.Int32
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer stub.Close()

	cache := newTokenCache(stub.Client(), slog.Default())
	sess := testSession(stub.URL)

	_, err := cache.acquire(context.Background(), sess)
	require.Error(t, err)

	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindAuthFailed, derr.Kind)
	require.Contains(t, derr.Message, "invalid_client")

	// The failure was not installed: the next acquire exchanges again.
	_, err = cache.acquire(context.Background(), sess)
	require.Error(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestTokenCache_CancelledRefreshLeavesCacheClean(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"late","token_type":"Bearer","expires_in":3600}`))
	}))
	defer stub.Close()
	defer close(release)

	cache := newTokenCache(stub.Client(), slog.Default())
	sess := testSession(stub.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := cache.acquire(ctx, sess)
	require.Error(t, err)

	// No partial token was installed.
	cache.mu.RLock()
	_, ok := cache.tokens[sess.Fingerprint]
	cache.mu.RUnlock()
	require.False(t, ok)
}
