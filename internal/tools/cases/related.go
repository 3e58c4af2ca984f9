package cases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

// --- get_related_cases ---

type getRelatedCasesParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
}

type GetRelatedCases struct {
	deps *common.Deps
}

func NewGetRelatedCases(deps *common.Deps) *GetRelatedCases { return &GetRelatedCases{deps: deps} }

func (t *GetRelatedCases) Name() string     { return "get_related_cases" }
func (t *GetRelatedCases) Category() string { return category }
func (t *GetRelatedCases) Description() string {
	return "List the cases related to the given case."
}
func (t *GetRelatedCases) InputSchema() json.RawMessage {
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

func (t *GetRelatedCases) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getRelatedCasesParams](params)
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
	return common.Run(ctx, "Get Related Cases", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetRelatedCases(ctx, sess, p.CaseID)
	}), nil
}

// --- relate_cases ---

type relateCasesParams struct {
	common.SessionArgs
	CaseID string   `json:"caseID"`
	Cases  []string `json:"cases"`
}

type RelateCases struct {
	deps *common.Deps
}

func NewRelateCases(deps *common.Deps) *RelateCases { return &RelateCases{deps: deps} }

func (t *RelateCases) Name() string     { return "relate_cases" }
func (t *RelateCases) Category() string { return category }
func (t *RelateCases) Description() string {
	return "Link one or more existing cases to the given case as related cases."
}
func (t *RelateCases) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle of the case to relate to"
    },
    "cases": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Full handles of the cases to link"
    },
    %s
  },
  "required": ["caseID", "cases"]
}`, common.SessionCredentialsProperty))
}

func (t *RelateCases) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[relateCasesParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "caseID", Value: p.CaseID}); msg != "" {
		return common.ValidationError(msg), nil
	}
	if len(p.Cases) == 0 {
		return common.ValidationError("cases is required"), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	related := make([]map[string]any, 0, len(p.Cases))
	for _, id := range p.Cases {
		related = append(related, map[string]any{"ID": id})
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Relate Cases", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.RelateCases(ctx, sess, p.CaseID, related)
	}), nil
}

// --- unrelate_case ---

type unrelateCaseParams struct {
	common.SessionArgs
	CaseID        string `json:"caseID"`
	RelatedCaseID string `json:"relatedCaseID"`
}

type UnrelateCase struct {
	deps *common.Deps
}

func NewUnrelateCase(deps *common.Deps) *UnrelateCase { return &UnrelateCase{deps: deps} }

func (t *UnrelateCase) Name() string     { return "unrelate_case" }
func (t *UnrelateCase) Category() string { return category }
func (t *UnrelateCase) Description() string {
	return "Remove the link between a case and one of its related cases."
}
func (t *UnrelateCase) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "relatedCaseID": {
      "type": "string",
      "description": "Full handle of the related case to unlink"
    },
    %s
  },
  "required": ["caseID", "relatedCaseID"]
}`, common.SessionCredentialsProperty))
}

func (t *UnrelateCase) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[unrelateCaseParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "relatedCaseID", Value: p.RelatedCaseID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Unrelate Case", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.UnrelateCase(ctx, sess, p.CaseID, p.RelatedCaseID)
	}), nil
}
