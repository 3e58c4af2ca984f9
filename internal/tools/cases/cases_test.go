package cases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
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
	requests []string // "METHOD path"

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

func (s *stubDeployment) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

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

func TestCreateCase_RequiresCaseTypeID(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no upstream call expected")
	})
	defer s.close()

	tool := NewCreateCase(s.deps(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"content":{"Name":"x"}}`))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, res.Content[0].Text, "caseTypeID is required")
	require.Empty(t, s.recorded())
}

func TestCreateCase_Success(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ON6E5R-DIYRecipe-Work-RecipeCollection", body["caseTypeID"])

		w.Header().Set("eTag", "v1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ID":"ON6E5R-DIYREC-WORK R-1001","status":"New"}`))
	})
	defer s.close()

	tool := NewCreateCase(s.deps(t))
	res, err := tool.Execute(context.Background(),
		json.RawMessage(`{"caseTypeID":"ON6E5R-DIYRecipe-Work-RecipeCollection","content":{"Name":"Pasta"}}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := res.Content[0].Text
	require.True(t, strings.HasPrefix(text, "## Create Case\n"))
	require.Contains(t, text, "R-1001")
	require.Contains(t, text, "`v1`")
}

func TestPerformCaseAction_AutoFetchReadsCaseAction(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("eTag", "v3")
			w.Write([]byte(`{}`))
		case http.MethodPatch:
			require.Equal(t, "v3", r.Header.Get("If-Match"))
			w.Write([]byte(`{"status":"Updated"}`))
		}
	})
	defer s.close()

	tool := NewPerformCaseAction(s.deps(t))
	res, err := tool.Execute(context.Background(),
		json.RawMessage(`{"caseID":"ON6E5R-DIYREC-WORK R-1001","actionID":"pyUpdateCaseDetails"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, res.Content[0].Text, "fetched automatically")

	reqs := s.recorded()
	require.Len(t, reqs, 2)
	require.Equal(t, "GET /api/application/v2/cases/ON6E5R-DIYREC-WORK R-1001/actions/pyUpdateCaseDetails", reqs[0])
	require.Equal(t, "PATCH /api/application/v2/cases/ON6E5R-DIYREC-WORK R-1001/actions/pyUpdateCaseDetails", reqs[1])
}

func TestChangeToNextStage_AutoFetchReadsCase(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("eTag", "v9")
			w.Write([]byte(`{}`))
		case http.MethodPost:
			require.Equal(t, "v9", r.Header.Get("If-Match"))
			w.Write([]byte(`{"stageLabel":"Delivery"}`))
		}
	})
	defer s.close()

	tool := NewChangeToNextStage(s.deps(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"caseID":"R-1"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	reqs := s.recorded()
	require.Len(t, reqs, 2)
	require.Equal(t, "GET /api/application/v2/cases/R-1", reqs[0])
	require.Equal(t, "POST /api/application/v2/cases/R-1/stages/next", reqs[1])
}

func TestGetCase_NotFoundShaping(t *testing.T) {
	s := newStubDeployment(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorDetails":[{"message":"Error_NotFound","localizedValue":"Case not found"}]}`))
	})
	defer s.close()

	tool := NewGetCase(s.deps(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"caseID":"R-404"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := res.Content[0].Text
	require.True(t, strings.HasPrefix(text, "## ❌ Get Case failed\n"))
	require.Contains(t, text, "NOT_FOUND")
	require.Contains(t, text, "Case not found")
}
