// Package content provides the MCP prompts and reference resources the
// gateway publishes alongside its tools.
package content

import "github.com/marco-looy/pega-dx-mcp/internal/mcp"

// --- work-a-case prompt ---

// WorkCasePrompt walks a client through the standard case-working loop:
// find an assignment, inspect its action, submit it.
type WorkCasePrompt struct{}

func (p *WorkCasePrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "work-a-case",
		Description: "Step-by-step guide for working a Pega case end to end: discover case types, create or pick up work, and drive assignments to completion.",
		Arguments: []mcp.PromptArgument{
			{Name: "caseID", Description: "Optional full case handle to focus on", Required: false},
		},
	}
}

func (p *WorkCasePrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	text := workCaseGuide
	if caseID := arguments["caseID"]; caseID != "" {
		text += "\n\nFocus on case `" + caseID + "`: start with get_case, then get_case_stages to see where it stands.\n"
	}
	return &mcp.PromptsGetResult{
		Description: "Guide for working a Pega case",
		Messages: []mcp.PromptMessage{
			{
				Role:    "user",
				Content: mcp.TextContent(text),
			},
		},
	}, nil
}

const workCaseGuide = `# Working a Pega Case

You drive Pega case work through the tools this server exposes. The loop below
covers the common path.

## 1. Discover

- ` + "`get_case_types`" + ` lists what you can create and the valid caseTypeID values.
- ` + "`get_list_data_view`" + ` queries worklists and reference data (e.g. D_Worklist).

## 2. Create or pick up work

- ` + "`create_case`" + ` starts a new case; the response carries the case handle and eTag.
- ` + "`get_next_assignment`" + ` pulls the next assignment from the work basket.
- ` + "`get_assignment`" + ` shows an assignment's instructions and available actions.

## 3. Act

- ` + "`get_assignment_action`" + ` returns the action's form fields and current eTag.
- ` + "`perform_assignment_action`" + ` submits it. You may omit eTag: the tool
  performs the read for you and notes it in the response.
- Case-wide changes go through ` + "`get_case_action`" + ` / ` + "`perform_case_action`" + `.

## 4. Inspect

- ` + "`get_case`" + ` and ` + "`get_case_stages`" + ` show status and lifecycle position.
- Attachments, participants, followers and tags have their own tool families.

## Concurrency

Writes use optimistic concurrency. A PRECONDITION_FAILED result means another
writer changed the entity first: re-read (or drop the eTag argument) and retry
the action with fresh data.`
