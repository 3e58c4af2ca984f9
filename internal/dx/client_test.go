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

// upstream is a stub DX deployment: a token endpoint plus a configurable
// data handler, recording every data request in order.
type upstream struct {
	srv        *httptest.Server
	tokenCalls atomic.Int32

	mu       sync.Mutex
	requests []recordedRequest

	data http.HandlerFunc
}

type recordedRequest struct {
	method  string
	path    string // escaped
	ifMatch string
}

func newUpstream(data http.HandlerFunc) *upstream {
	u := &upstream{data: data}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		n := u.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":3600}`, n)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.requests = append(u.requests, recordedRequest{
			method:  r.Method,
			path:    r.URL.EscapedPath(),
			ifMatch: r.Header.Get("If-Match"),
		})
		u.mu.Unlock()
		u.data(w, r)
	})
	u.srv = httptest.NewServer(mux)
	return u
}

func (u *upstream) close() { u.srv.Close() }

func (u *upstream) session() *Session {
	return &Session{
		APIBase:      u.srv.URL + "/api/application/v2",
		TokenURL:     u.srv.URL + "/token",
		ClientID:     "client",
		ClientSecret: "secret",
		Fingerprint:  "fp-" + u.srv.URL,
		AuthMode:     "shared",
		Source:       "env",
	}
}

func (u *upstream) recorded() []recordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]recordedRequest, len(u.requests))
	copy(out, u.requests)
	return out
}

func newTestClient(t *testing.T, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(slog.Default(), Options{Timeout: timeout})
	require.NoError(t, err)
	return c
}

func TestCall_401ThenSuccess(t *testing.T) {
	var dataCalls atomic.Int32
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		if dataCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("eTag", "v2")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ID":"R-1001","status":"Open"}`))
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	res, err := c.GetCase(context.Background(), u.session(), "R-1001", GetCaseOptions{})
	require.NoError(t, err)
	require.Equal(t, "v2", res.ETag)
	require.Equal(t, "R-1001", res.Data["ID"])

	require.Equal(t, int32(2), u.tokenCalls.Load(), "401 must force a second exchange")
	require.Len(t, u.recorded(), 2, "exactly one reissue after the 401")
}

func TestCall_SecondUnauthorizedIsTerminal(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	_, err := c.GetCase(context.Background(), u.session(), "R-1001", GetCaseOptions{})

	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindUnauthorized, derr.Kind)
	require.Len(t, u.recorded(), 2, "exactly two requests, never three")
	require.Equal(t, int32(2), u.tokenCalls.Load())
}

func TestCall_NoRetryOnServerError(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errorDetails":[{"message":"Error_Internal","localizedValue":"Something broke"}]}`))
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	_, err := c.PerformAssignmentAction(context.Background(), u.session(),
		"ASSIGN-WORKLIST R-1!FLOW", "Submit", "v1", ActionInput{}, "")

	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindInternalServerError, derr.Kind)
	require.Equal(t, "Something broke", derr.Message)
	require.Len(t, u.recorded(), 1, "writes are never retried")
}

func TestCall_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusPreconditionFailed, KindPreconditionFailed},
		{http.StatusUnprocessableEntity, KindValidationFail},
		{http.StatusLocked, KindLocked},
		{http.StatusFailedDependency, KindFailedDependency},
		{http.StatusTeapot, KindBadRequest},
		{http.StatusBadGateway, KindInternalServerError},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d", tc.status), func(t *testing.T) {
			u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			defer u.close()

			c := newTestClient(t, 5*time.Second)
			_, err := c.GetCase(context.Background(), u.session(), "R-1", GetCaseOptions{})

			var derr *Error
			require.ErrorAs(t, err, &derr)
			require.Equal(t, tc.kind, derr.Kind)
			require.Equal(t, tc.status, derr.Status)
		})
	}
}

func TestCall_PathSegmentsAreEscaped(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	_, err := c.GetCase(context.Background(), u.session(), "ON6E5R-DIYREC-WORK R-1001", GetCaseOptions{ViewType: "page"})
	require.NoError(t, err)

	reqs := u.recorded()
	require.Len(t, reqs, 1)
	require.Equal(t, "/api/application/v2/cases/ON6E5R-DIYREC-WORK%20R-1001", reqs[0].path)
}

func TestCall_IfMatchAndBodyOnWrites(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("eTag", "v2")
		w.Write([]byte(`{"confirmationNote":"done"}`))
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	res, err := c.PerformAssignmentAction(context.Background(), u.session(),
		"ASSIGN-WORKLIST ON6E5R-DIYREC-WORK R-1001!APPROVAL_FLOW", "Approve", "v1",
		ActionInput{Content: map[string]any{"Note": "ok"}}, "none")
	require.NoError(t, err)
	require.Equal(t, "v2", res.ETag)

	reqs := u.recorded()
	require.Len(t, reqs, 1)
	require.Equal(t, http.MethodPatch, reqs[0].method)
	require.Equal(t, "v1", reqs[0].ifMatch)
	require.Equal(t,
		"/api/application/v2/assignments/ASSIGN-WORKLIST%20ON6E5R-DIYREC-WORK%20R-1001%21APPROVAL_FLOW/actions/Approve",
		reqs[0].path)
}

func TestCall_DeadlineYieldsTimeout(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	})
	defer u.close()

	c := newTestClient(t, 100*time.Millisecond)
	_, err := c.GetCase(context.Background(), u.session(), "R-1", GetCaseOptions{})

	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindTimeout, derr.Kind)
}

func TestCall_UnreachableHostYieldsConnectionError(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {})
	sess := u.session()
	u.close() // tear down before calling

	// Token acquisition fails first; point the token URL at a live stub so
	// the data call is the one that fails.
	var calls atomic.Int32
	token := newTokenStub(t, 3600, &calls)
	defer token.Close()
	sess.TokenURL = token.URL

	c := newTestClient(t, 2*time.Second)
	_, err := c.GetCase(context.Background(), sess, "R-1", GetCaseOptions{})

	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindConnectionError, derr.Kind)
}

func TestCall_ConcurrentCallsShareOneExchange(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	sess := u.session()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetCase(context.Background(), sess, "R-1", GetCaseOptions{})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	require.Equal(t, int32(1), u.tokenCalls.Load(), "one exchange serves all concurrent callers")
	require.Len(t, u.recorded(), n)
}
