// Package dx is the client for the Pega DX API v2. It owns token
// acquisition and caching, request construction, the single retry on 401,
// and the mapping from HTTP statuses to domain error kinds. It knows nothing
// about tool schemas or Markdown formatting.
package dx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/worldline-go/klient"
)

// DefaultTimeout bounds every outbound call unless the config overrides it.
const DefaultTimeout = 30 * time.Second

// Client issues authenticated requests against a DX API deployment. One
// Client serves all sessions; per-invocation state travels in the Session.
type Client struct {
	http    *http.Client
	tokens  *tokenCache
	logger  *slog.Logger
	timeout time.Duration
}

// Options tunes client construction.
type Options struct {
	// Timeout is the per-call deadline. Zero means DefaultTimeout.
	Timeout time.Duration
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// InsecureSkipVerify disables TLS verification. Test rigs only.
	InsecureSkipVerify bool
}

// New creates a Client with a pooled keep-alive transport. Transport-level
// retry is disabled: the only retry the gateway performs is the single
// reissue after a 401, owned by call.
func New(logger *slog.Logger, opts Options) (*Client, error) {
	klientOpts := []klient.OptionClientFn{
		klient.WithDisableBaseURLCheck(true),
		klient.WithDisableEnvValues(true),
		klient.WithDisableRetry(true),
		klient.WithLogger(logger),
	}
	if opts.Proxy != "" {
		klientOpts = append(klientOpts, klient.WithProxy(opts.Proxy))
	}
	if opts.InsecureSkipVerify {
		klientOpts = append(klientOpts, klient.WithInsecureSkipVerify(true))
	}

	k, err := klient.New(klientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating http client: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		http:    k.HTTP,
		tokens:  newTokenCache(k.HTTP, logger),
		logger:  logger,
		timeout: timeout,
	}, nil
}

// Result is the outcome of a successful DX call. Data holds the decoded
// response body; ETag is the value of the eTag response header when the
// endpoint returned one.
type Result struct {
	Data map[string]any
	ETag string

	// Raw is the undecoded body, kept for binary endpoints (attachment
	// and document content) whose payload is not JSON.
	Raw []byte
}

// request is one outbound DX call before execution. Path segments are
// escaped individually; query and headers are attached verbatim.
type request struct {
	method   string
	segments []string
	query    url.Values
	headers  map[string]string
	etag     string // If-Match, writes only

	body        []byte
	contentType string
}

// withJSONBody serializes v and attaches it as the JSON request body.
func (r *request) withJSONBody(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	r.body = b
	r.contentType = "application/json"
	return nil
}

// urlFor builds the request URL under the session's API base. Each path
// segment is percent-encoded so ids containing spaces or punctuation
// survive intact.
func (r *request) urlFor(sess *Session) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(sess.APIBase, "/"))
	for _, seg := range r.segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(seg))
	}
	if len(r.query) > 0 {
		sb.WriteByte('?')
		sb.WriteString(r.query.Encode())
	}
	return sb.String()
}

// call executes one DX request: acquire token, issue, and on a 401
// invalidate + re-acquire + reissue exactly once. All other statuses are
// mapped and returned; the client never retries writes.
func (c *Client) call(ctx context.Context, sess *Session, req *request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, status, err := c.issue(ctx, sess, req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		c.logger.Debug("401 from upstream, refreshing token",
			"path", strings.Join(req.segments, "/"),
			"fingerprint", shortFingerprint(sess.Fingerprint),
		)
		c.tokens.invalidate(sess)
		res, status, err = c.issue(ctx, sess, req)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, &Error{
				Kind:    KindUnauthorized,
				Message: "request rejected with 401 after token refresh; verify the client credentials and their access role",
				Status:  status,
			}
		}
	}
	return res, nil
}

// issue performs a single HTTP round trip. A 401 is reported via the status
// return so call can run the refresh path; every other non-2xx status comes
// back as a mapped *Error.
func (c *Client) issue(ctx context.Context, sess *Session, req *request) (*Result, int, error) {
	token, err := c.tokens.acquire(ctx, sess)
	if err != nil {
		return nil, 0, err
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.urlFor(sess), body)
	if err != nil {
		return nil, 0, &Error{Kind: KindConnectionError, Message: "building request: " + err.Error(), Cause: err}
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.etag != "" {
		httpReq.Header.Set("If-Match", req.etag)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, transportError(ctx, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, upstreamError(resp.StatusCode, data)
	}

	result := &Result{
		ETag: strings.TrimSpace(resp.Header.Get("eTag")),
		Raw:  data,
	}
	if len(data) > 0 && looksLikeJSON(resp.Header.Get("Content-Type"), data) {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err == nil {
			result.Data = m
		}
	}
	return result, resp.StatusCode, nil
}

// transportError classifies a failed round trip: an exceeded deadline
// yields TIMEOUT, caller cancellation yields a CONNECTION_ERROR carrying the
// context's error, anything else is a CONNECTION_ERROR.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request exceeded deadline", Cause: err}
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return &Error{Kind: KindConnectionError, Message: "request cancelled", Cause: ctx.Err()}
	}
	return &Error{Kind: KindConnectionError, Message: "connection failed: " + err.Error(), Cause: err}
}

// upstreamError maps a non-2xx DX response to a tagged error, pulling the
// errorDetails array out of the body when present.
func upstreamError(status int, body []byte) *Error {
	e := &Error{
		Kind:   kindForStatus(status),
		Status: status,
	}

	var parsed struct {
		ErrorDetails []ErrorDetail `json:"errorDetails"`
		Message      string        `json:"message"`
		LocalizedMsg string        `json:"localizedValue"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		e.Details = parsed.ErrorDetails
		switch {
		case parsed.Message != "":
			e.Message = parsed.Message
		case parsed.LocalizedMsg != "":
			e.Message = parsed.LocalizedMsg
		case len(parsed.ErrorDetails) > 0:
			e.Message = firstDetailMessage(parsed.ErrorDetails)
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func firstDetailMessage(details []ErrorDetail) string {
	for _, d := range details {
		if d.LocalizedValue != "" {
			return d.LocalizedValue
		}
		if d.Message != "" {
			return d.Message
		}
	}
	return ""
}

func looksLikeJSON(contentType string, data []byte) bool {
	if strings.Contains(contentType, "application/json") {
		return true
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
