package common

import (
	"context"
	"strings"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
)

// FormatContext carries per-invocation facts the shaper renders alongside
// the payload.
type FormatContext struct {
	// AutoFetchedETag notes that the write's eTag was obtained by a
	// preliminary read rather than supplied by the caller.
	AutoFetchedETag bool

	// Session is the invocation's effective configuration; only its
	// diagnostic tags are rendered.
	Session *dx.Session
}

// Call is one upstream operation wrapped by Run.
type Call func(ctx context.Context) (*dx.Result, error)

// Run executes call inside the uniform envelope: success is shaped by
// FormatSuccess, failure by FormatError, and an unexpected panic becomes a
// fallback error result. Tools never surface a bare error to the
// dispatcher.
func Run(ctx context.Context, op string, fctx *FormatContext, call Call) (result *mcp.ToolsCallResult) {
	defer func() {
		if r := recover(); r != nil {
			err := dx.NewError(dx.KindInternalServerError, "unexpected failure: %v", r)
			result = mcp.TextResult(FormatError(op, err, fctx))
		}
	}()

	res, err := call(ctx)
	if err != nil {
		return mcp.TextResult(FormatError(op, err, fctx))
	}
	return mcp.TextResult(FormatSuccess(op, res, fctx))
}

// FetchETagIfMissing returns the caller's eTag trimmed, or performs the
// declared preliminary read when it is absent, marking the context so the
// response notes the auto-fetch. A fetch failure is terminal: the write is
// not attempted.
func FetchETagIfMissing(ctx context.Context, deps *Deps, sess *dx.Session, etag string, ref dx.EntityRef, fctx *FormatContext) (string, error) {
	if trimmed := strings.TrimSpace(etag); trimmed != "" {
		return trimmed, nil
	}
	fetched, err := deps.Client.FetchETag(ctx, sess, ref)
	if err != nil {
		return "", err
	}
	fctx.AutoFetchedETag = true
	return fetched, nil
}
