package attachments

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marco-looy/pega-dx-mcp/internal/config"
	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

type stubDeployment struct {
	srv        *httptest.Server
	tokenCalls atomic.Int32

	mu       sync.Mutex
	requests []string

	data http.HandlerFunc
}

func newStubDeployment(data http.HandlerFunc) *stubDeployment {
	s := &stubDeployment{data: data}
	mux := http.NewServeMux()
	mux.HandleFunc("/PRRestService/oauth2/v1/token", func(w http.ResponseWriter, r *http.Request) {
		n := s.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":3600}`, n)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		s.data(w, r)
	})
	s.srv = httptest.NewServer(mux)
	return s
}

func (s *stubDeployment) close() { s.srv.Close() }

func (s *stubDeployment) deps(t *testing.T) *common.Deps {
	t.Helper()
	client, err := dx.New(slog.Default(), dx.Options{Timeout: 5 * time.Second})
	require.NoError(t, err)
	return &common.Deps{
		Client: client,
		Defaults: config.Credentials{
			BaseURL:      s.srv.URL,
			ClientID:     "test-client",
			ClientSecret: "test-secret",
		},
		Logger: slog.Default(),
	}
}

func TestUploadAttachment_FromFile(t *testing.T) {
	var gotName, gotBody string
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("arrayOfFiles")
		require.NoError(t, err)
		defer file.Close()
		gotName = header.Filename
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		gotBody = string(body)

		require.Equal(t, "true", r.FormValue("appendUniqueIdToFileName"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ID":"temp-attachment-1"}`))
	})
	defer s.close()

	path := filepath.Join(t.TempDir(), "recipe.txt")
	require.NoError(t, os.WriteFile(path, []byte("flour, water, salt"), 0o600))

	tool := NewUploadAttachment(s.deps(t))
	args := fmt.Sprintf(`{"filePath":%q,"appendUniqueIdToFileName":true}`, path)
	res, err := tool.Execute(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	require.False(t, res.IsError)

	require.Equal(t, "recipe.txt", gotName)
	require.Equal(t, "flour, water, salt", gotBody)
	require.Contains(t, res.Content[0].Text, "temp-attachment-1")
}

func TestUploadAttachment_FromBase64Content(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("arrayOfFiles")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "notes.md", header.Filename)
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "hello", string(body))
		w.Write([]byte(`{"ID":"temp-attachment-2"}`))
	})
	defer s.close()

	tool := NewUploadAttachment(s.deps(t))
	args := fmt.Sprintf(`{"fileContent":%q,"fileName":"notes.md"}`,
		base64.StdEncoding.EncodeToString([]byte("hello")))
	res, err := tool.Execute(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	require.False(t, res.IsError)
}

func TestUploadAttachment_ValidationRules(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no upstream call expected")
	})
	defer s.close()
	tool := NewUploadAttachment(s.deps(t))

	cases := []struct {
		name string
		args string
		want string
	}{
		{"neither source", `{}`, "either filePath or fileContent is required"},
		{"both sources", `{"filePath":"/x","fileContent":"aGk="}`, "mutually exclusive"},
		{"content without name", `{"fileContent":"aGk="}`, "fileName is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := tool.Execute(context.Background(), json.RawMessage(tc.args))
			require.NoError(t, err)
			require.True(t, res.IsError)
			require.Contains(t, res.Content[0].Text, tc.want)
		})
	}
	require.Equal(t, int32(0), s.tokenCalls.Load())
}

func TestUploadAttachment_UnreadableFileIsShapedError(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no upstream call expected")
	})
	defer s.close()

	tool := NewUploadAttachment(s.deps(t))
	args := fmt.Sprintf(`{"filePath":%q}`, filepath.Join(t.TempDir(), "missing.bin"))
	res, err := tool.Execute(context.Background(), json.RawMessage(args))
	require.NoError(t, err)

	// Shaped through the error envelope, not an isError result: the session
	// was already resolved when the file open failed.
	require.Contains(t, res.Content[0].Text, "INVALID_ARGUMENT")
	require.Contains(t, res.Content[0].Text, "cannot open")
}

func TestAddCaseAttachments_Success(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Attachments []map[string]any `json:"attachments"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Attachments, 1)
		require.Equal(t, "File", body.Attachments[0]["type"])
		w.WriteHeader(http.StatusCreated)
	})
	defer s.close()

	tool := NewAddCaseAttachments(s.deps(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(
		`{"caseID":"R-1","attachments":[{"type":"File","category":"File","ID":"temp-attachment-1"}]}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.True(t, strings.HasPrefix(res.Content[0].Text, "## Add Case Attachments\n"))
}
