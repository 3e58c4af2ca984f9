package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "get_case", category: "cases"}))
	require.NoError(t, r.Register(&fakeTool{name: "get_assignment", category: "assignments"}))
	return NewServer(r, ServerInfo{Name: "test", Version: "0.0.0"}, slog.Default())
}

func callMessage(t *testing.T, s *Server, raw string) *Response {
	t.Helper()
	return s.HandleMessage(context.Background(), []byte(raw))
}

func TestHandleMessage_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := callMessage(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test-client"}}}`)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	init, ok := resp.Result.(*InitializeResult)
	require.True(t, ok)
	require.Equal(t, "test", init.ServerInfo.Name)
	require.NotNil(t, init.Capabilities.Tools)
}

func TestHandleMessage_ToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := callMessage(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Nil(t, resp.Error)

	list, ok := resp.Result.(*ToolsListResult)
	require.True(t, ok)
	require.Len(t, list.Tools, 2)
	require.Equal(t, "get_assignment", list.Tools[0].Name)
	require.Equal(t, "get_case", list.Tools[1].Name)
}

func TestHandleMessage_UnknownToolListsAvailable(t *testing.T) {
	s := newTestServer(t)
	resp := callMessage(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"nope","arguments":{}}}`)
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
	require.Equal(t, "Unknown tool: nope. Available tools: get_assignment, get_case", resp.Error.Message)
}

func TestHandleMessage_ToolCallSucceeds(t *testing.T) {
	s := newTestServer(t)
	resp := callMessage(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_case","arguments":{"id":"R-1"}}}`)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*ToolsCallResult)
	require.True(t, ok)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	require.Equal(t, "## ok\n", result.Content[0].Text)
}

func TestHandleMessage_NotificationsGetNoResponse(t *testing.T) {
	s := newTestServer(t)
	resp := callMessage(t, s, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	require.Nil(t, resp)
}

func TestHandleMessage_ParseError(t *testing.T) {
	s := newTestServer(t)
	resp := callMessage(t, s, `{not json`)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrCodeParse, resp.Error.Code)
}

type panickyTool struct{ fakeTool }

func (p *panickyTool) Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error) {
	panic("boom")
}

func TestHandleMessage_PanickingToolBecomesErrorResult(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&panickyTool{fakeTool{name: "explode", category: "x"}}))
	s := NewServer(r, ServerInfo{Name: "test", Version: "0"}, slog.Default())

	resp := callMessage(t, s, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"explode","arguments":{}}}`)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*ToolsCallResult)
	require.True(t, ok)
	require.True(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "INTERNAL_SERVER_ERROR")
}
