package dx

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchETag_AssignmentActionRead(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("eTag", "v7")
		w.Write([]byte(`{}`))
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	etag, err := c.FetchETag(context.Background(), u.session(), AssignmentActionRef("ASSIGN-WORKLIST R-1!FLOW", "Approve"))
	require.NoError(t, err)
	require.Equal(t, "v7", etag)

	reqs := u.recorded()
	require.Len(t, reqs, 1)
	require.Equal(t, http.MethodGet, reqs[0].method)
	require.Equal(t, "/api/application/v2/assignments/ASSIGN-WORKLIST%20R-1%21FLOW/actions/Approve", reqs[0].path)
}

func TestFetchETag_ReadFailureIsTerminal(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	_, err := c.FetchETag(context.Background(), u.session(), CaseActionRef("R-1", "pyUpdateCaseDetails"))

	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindETagFetchFailed, derr.Kind)

	// The wrapped cause keeps the read's own kind.
	var cause *Error
	require.ErrorAs(t, derr.Cause, &cause)
	require.Equal(t, KindNotFound, cause.Kind)
}

func TestFetchETag_EmptyHeaderIsMissing(t *testing.T) {
	u := newUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer u.close()

	c := newTestClient(t, 5*time.Second)
	_, err := c.FetchETag(context.Background(), u.session(), CaseRef("R-1"))

	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindETagMissing, derr.Kind)
}
