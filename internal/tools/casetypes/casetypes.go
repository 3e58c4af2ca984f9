// Package casetypes implements the case type discovery tools:
// get_case_types and get_case_type_action.
package casetypes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "casetypes"

// --- get_case_types ---

type getCaseTypesParams struct {
	common.SessionArgs
}

type GetCaseTypes struct {
	deps *common.Deps
}

func NewGetCaseTypes(deps *common.Deps) *GetCaseTypes { return &GetCaseTypes{deps: deps} }

func (t *GetCaseTypes) Name() string     { return "get_case_types" }
func (t *GetCaseTypes) Category() string { return category }
func (t *GetCaseTypes) Description() string {
	return "List the case types the authenticated operator can create in the application. Start here to discover valid caseTypeID values for create_case."
}
func (t *GetCaseTypes) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    %s
  },
  "required": []
}`, common.SessionCredentialsProperty))
}

func (t *GetCaseTypes) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseTypesParams](params)
	if errRes != nil {
		return errRes, nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Case Types", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseTypes(ctx, sess)
	}), nil
}

// --- get_case_type_action ---

type getCaseTypeActionParams struct {
	common.SessionArgs
	CaseTypeID string `json:"caseTypeID"`
	ActionID   string `json:"actionID"`
}

type GetCaseTypeAction struct {
	deps *common.Deps
}

func NewGetCaseTypeAction(deps *common.Deps) *GetCaseTypeAction {
	return &GetCaseTypeAction{deps: deps}
}

func (t *GetCaseTypeAction) Name() string     { return "get_case_type_action" }
func (t *GetCaseTypeAction) Category() string { return category }
func (t *GetCaseTypeAction) Description() string {
	return "Get the metadata of a case-type-level action, including the view structure of its creation or bulk form."
}
func (t *GetCaseTypeAction) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseTypeID": {
      "type": "string",
      "description": "Case type identifier"
    },
    "actionID": {
      "type": "string",
      "description": "Action name defined on the case type"
    },
    %s
  },
  "required": ["caseTypeID", "actionID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetCaseTypeAction) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseTypeActionParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseTypeID", Value: p.CaseTypeID},
		common.Field{Name: "actionID", Value: p.ActionID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Case Type Action", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseTypeAction(ctx, sess, p.CaseTypeID, p.ActionID)
	}), nil
}
