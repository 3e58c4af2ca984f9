package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name     string
	category string
	schema   string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Category() string    { return f.category }
func (f *fakeTool) Description() string { return "fake tool " + f.name }
func (f *fakeTool) InputSchema() json.RawMessage {
	if f.schema != "" {
		return json.RawMessage(f.schema)
	}
	return json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`)
}
func (f *fakeTool) Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error) {
	return TextResult("## ok\n"), nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "b_tool", category: "beta"}))
	require.NoError(t, r.Register(&fakeTool{name: "a_tool", category: "alpha"}))
	require.NoError(t, r.Register(&fakeTool{name: "c_tool", category: "alpha"}))

	require.NotNil(t, r.Get("a_tool"))
	require.Nil(t, r.Get("nope"))

	require.Equal(t, []string{"a_tool", "b_tool", "c_tool"}, r.Names())
	require.Equal(t, map[string]int{"alpha": 2, "beta": 1}, r.CategoryCounts())
	require.Equal(t, []string{"a_tool", "c_tool"}, r.CategoryNames("alpha"))

	defs := r.List()
	require.Len(t, defs, 3)
	require.Equal(t, "a_tool", defs[0].Name)
}

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "dup", category: "x"}))

	err := r.Register(&fakeTool{name: "dup", category: "y"})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"dup" already registered`)
}

func TestRegistry_SchemaMustCompile(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&fakeTool{name: "broken", category: "x", schema: `{"type":"object","properties":`})
	require.Error(t, err)
}

func TestRegistry_TypeAndUnionConflictRejected(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&fakeTool{name: "conflicted", category: "x", schema: `{
  "type": "object",
  "properties": {
    "value": {"type": "string", "anyOf": [{"const": "a"}, {"const": "b"}]}
  }
}`})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"anyOf"/"oneOf"`)
}

func TestValidateToolSchema_NestedConflictFound(t *testing.T) {
	schema := json.RawMessage(`{
  "type": "object",
  "properties": {
    "items": {
      "type": "array",
      "items": {"oneOf": [{"type": "string"}], "type": "string"}
    }
  }
}`)
	err := ValidateToolSchema("nested", schema)
	require.Error(t, err)
}

func TestValidateToolSchema_CleanSchemaPasses(t *testing.T) {
	schema := json.RawMessage(`{
  "type": "object",
  "properties": {
    "viewType": {"type": "string", "enum": ["form", "page"], "default": "form"},
    "content": {"type": "object"},
    "tags": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["viewType"]
}`)
	require.NoError(t, ValidateToolSchema("clean", schema))
}
