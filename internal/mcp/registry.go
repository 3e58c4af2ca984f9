package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Tool is the interface every gateway tool implements.
type Tool interface {
	// Name returns the tool name (e.g. "get_case", "perform_assignment_action").
	Name() string

	// Category returns the tag grouping related tools (e.g. "cases").
	Category() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// InputSchema returns the JSON Schema for the tool's parameters.
	InputSchema() json.RawMessage

	// Execute runs the tool with the given parameters and returns the result.
	Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error)
}

// Prompt is the interface for MCP prompts.
type Prompt interface {
	// Definition returns the prompt metadata (name, description, arguments).
	Definition() PromptDefinition

	// Get returns the prompt messages, optionally customized by arguments.
	Get(arguments map[string]string) (*PromptsGetResult, error)
}

// Resource is the interface for MCP resources.
type Resource interface {
	// Definition returns the resource metadata (URI, name, description, mimeType).
	Definition() ResourceDefinition

	// Read returns the resource content.
	Read() (*ResourcesReadResult, error)
}

// Registry holds all registered tools, prompts, and resources. It is
// populated once at startup and read-only during dispatch; the read lock
// keeps any later re-registration consistent with in-flight lookups.
type Registry struct {
	mu            sync.RWMutex
	tools         map[string]Tool
	names         []string            // sorted
	categories    map[string][]string // category -> sorted names
	prompts       map[string]Prompt
	promptOrder   []string
	resources     map[string]Resource // keyed by URI
	resourceOrder []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]Tool),
		categories: make(map[string][]string),
		prompts:    make(map[string]Prompt),
		resources:  make(map[string]Resource),
	}
}

// --- Tools ---

// Register adds a tool to the registry after validating its input schema.
// A duplicate name or an invalid schema is a startup failure, not a
// recoverable condition.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if err := ValidateToolSchema(name, t.InputSchema()); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = t

	r.names = insertSorted(r.names, name)
	r.categories[t.Category()] = insertSorted(r.categories[t.Category()], name)
	return nil
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns all tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// NamesSummary renders the sorted tool names as one comma-separated string
// for unknown-tool error messages.
func (r *Registry) NamesSummary() string {
	return strings.Join(r.Names(), ", ")
}

// List returns all registered tool definitions in sorted name order.
func (r *Registry) List() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.names))
	for _, name := range r.names {
		t := r.tools[name]
		defs = append(defs, ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// CategoryCounts returns the number of tools per category, for startup
// diagnostics.
func (r *Registry) CategoryCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int, len(r.categories))
	for cat, names := range r.categories {
		counts[cat] = len(names)
	}
	return counts
}

// CategoryNames returns the sorted tool names registered under a category.
func (r *Registry) CategoryNames(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.categories[category]))
	copy(out, r.categories[category])
	return out
}

func insertSorted(names []string, name string) []string {
	i := sort.SearchStrings(names, name)
	names = append(names, "")
	copy(names[i+1:], names[i:])
	names[i] = name
	return names
}

// --- Prompts ---

// RegisterPrompt adds a prompt to the registry.
func (r *Registry) RegisterPrompt(p Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Definition().Name
	if _, exists := r.prompts[name]; exists {
		return fmt.Errorf("prompt %q already registered", name)
	}
	r.prompts[name] = p
	r.promptOrder = append(r.promptOrder, name)
	return nil
}

// GetPrompt returns a prompt by name, or nil if not found.
func (r *Registry) GetPrompt(name string) Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prompts[name]
}

// ListPrompts returns all registered prompt definitions in registration order.
func (r *Registry) ListPrompts() []PromptDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]PromptDefinition, 0, len(r.promptOrder))
	for _, name := range r.promptOrder {
		defs = append(defs, r.prompts[name].Definition())
	}
	return defs
}

// HasPrompts returns true if any prompts are registered.
func (r *Registry) HasPrompts() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts) > 0
}

// --- Resources ---

// RegisterResource adds a resource to the registry.
func (r *Registry) RegisterResource(res Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	uri := res.Definition().URI
	if _, exists := r.resources[uri]; exists {
		return fmt.Errorf("resource %q already registered", uri)
	}
	r.resources[uri] = res
	r.resourceOrder = append(r.resourceOrder, uri)
	return nil
}

// GetResource returns a resource by URI, or nil if not found.
func (r *Registry) GetResource(uri string) Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resources[uri]
}

// ListResources returns all registered resource definitions in registration order.
func (r *Registry) ListResources() []ResourceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ResourceDefinition, 0, len(r.resourceOrder))
	for _, uri := range r.resourceOrder {
		defs = append(defs, r.resources[uri].Definition())
	}
	return defs
}

// HasResources returns true if any resources are registered.
func (r *Registry) HasResources() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources) > 0
}
