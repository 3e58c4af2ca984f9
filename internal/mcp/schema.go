package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateToolSchema strictly checks a tool's input schema at registration
// time: it must compile as JSON Schema, and no level may declare both
// "type" and "anyOf"/"oneOf" — a combination some MCP clients reject.
func ValidateToolSchema(name string, raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("tool %q: input schema is not valid JSON: %w", name, err)
	}

	if path := findTypeUnionConflict(doc, "$"); path != "" {
		return fmt.Errorf("tool %q: schema at %s declares both \"type\" and \"anyOf\"/\"oneOf\"", name, path)
	}

	compiler := jsonschema.NewCompiler()
	url := fmt.Sprintf("inmem://tools/%s.json", name)
	if err := compiler.AddResource(url, doc); err != nil {
		return fmt.Errorf("tool %q: adding schema resource: %w", name, err)
	}
	if _, err := compiler.Compile(url); err != nil {
		return fmt.Errorf("tool %q: input schema does not compile: %w", name, err)
	}
	return nil
}

// findTypeUnionConflict walks the decoded schema and returns the JSONPath
// of the first level declaring both "type" and a union keyword, or "".
func findTypeUnionConflict(doc any, path string) string {
	switch v := doc.(type) {
	case map[string]any:
		_, hasType := v["type"]
		if hasType {
			if _, ok := v["anyOf"]; ok {
				return path
			}
			if _, ok := v["oneOf"]; ok {
				return path
			}
		}
		for key, child := range v {
			if p := findTypeUnionConflict(child, path+"."+key); p != "" {
				return p
			}
		}
	case []any:
		for i, child := range v {
			if p := findTypeUnionConflict(child, fmt.Sprintf("%s[%d]", path, i)); p != "" {
				return p
			}
		}
	}
	return ""
}
