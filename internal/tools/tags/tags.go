// Package tags implements the case tag tools: get_case_tags, add_case_tags,
// delete_case_tag.
package tags

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "tags"

// --- get_case_tags ---

type getCaseTagsParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
}

type GetCaseTags struct {
	deps *common.Deps
}

func NewGetCaseTags(deps *common.Deps) *GetCaseTags { return &GetCaseTags{deps: deps} }

func (t *GetCaseTags) Name() string     { return "get_case_tags" }
func (t *GetCaseTags) Category() string { return category }
func (t *GetCaseTags) Description() string {
	return "List the tags on a case."
}
func (t *GetCaseTags) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    %s
  },
  "required": ["caseID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetCaseTags) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseTagsParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "caseID", Value: p.CaseID}); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Case Tags", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseTags(ctx, sess, p.CaseID)
	}), nil
}

// --- add_case_tags ---

type addCaseTagsParams struct {
	common.SessionArgs
	CaseID string   `json:"caseID"`
	Tags   []string `json:"tags"`
}

type AddCaseTags struct {
	deps *common.Deps
}

func NewAddCaseTags(deps *common.Deps) *AddCaseTags { return &AddCaseTags{deps: deps} }

func (t *AddCaseTags) Name() string     { return "add_case_tags" }
func (t *AddCaseTags) Category() string { return category }
func (t *AddCaseTags) Description() string {
	return "Attach one or more tags to a case."
}
func (t *AddCaseTags) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "tags": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Tag names to attach"
    },
    %s
  },
  "required": ["caseID", "tags"]
}`, common.SessionCredentialsProperty))
}

func (t *AddCaseTags) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[addCaseTagsParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "caseID", Value: p.CaseID}); msg != "" {
		return common.ValidationError(msg), nil
	}
	if len(p.Tags) == 0 {
		return common.ValidationError("tags is required"), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Add Case Tags", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.AddCaseTags(ctx, sess, p.CaseID, p.Tags)
	}), nil
}

// --- delete_case_tag ---

type deleteCaseTagParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
	TagID  string `json:"tagID"`
}

type DeleteCaseTag struct {
	deps *common.Deps
}

func NewDeleteCaseTag(deps *common.Deps) *DeleteCaseTag { return &DeleteCaseTag{deps: deps} }

func (t *DeleteCaseTag) Name() string     { return "delete_case_tag" }
func (t *DeleteCaseTag) Category() string { return category }
func (t *DeleteCaseTag) Description() string {
	return "Remove one tag from a case."
}
func (t *DeleteCaseTag) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "tagID": {
      "type": "string",
      "description": "Tag ID from get_case_tags"
    },
    %s
  },
  "required": ["caseID", "tagID"]
}`, common.SessionCredentialsProperty))
}

func (t *DeleteCaseTag) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[deleteCaseTagParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "tagID", Value: p.TagID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Delete Case Tag", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.DeleteCaseTag(ctx, sess, p.CaseID, p.TagID)
	}), nil
}
