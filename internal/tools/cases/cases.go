// Package cases implements the case lifecycle tools: create_case, get_case,
// delete_case, get_case_stages, get_case_view, get_case_action,
// perform_case_action, change_to_next_stage, change_to_stage, plus the
// related-case tools in related.go.
package cases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "cases"

// --- create_case ---

type createCaseParams struct {
	common.SessionArgs
	CaseTypeID       string         `json:"caseTypeID"`
	ParentCaseID     string         `json:"parentCaseID,omitempty"`
	Content          map[string]any `json:"content,omitempty"`
	PageInstructions []any          `json:"pageInstructions,omitempty"`
	Attachments      []any          `json:"attachments,omitempty"`
	ViewType         string         `json:"viewType,omitempty"`
}

type CreateCase struct {
	deps *common.Deps
}

func NewCreateCase(deps *common.Deps) *CreateCase { return &CreateCase{deps: deps} }

func (t *CreateCase) Name() string     { return "create_case" }
func (t *CreateCase) Category() string { return category }
func (t *CreateCase) Description() string {
	return "Create a new case of the given type, optionally seeding field values, embedded pages and attachments. Returns the new case with its eTag for follow-up writes."
}
func (t *CreateCase) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseTypeID": {
      "type": "string",
      "description": "Case type identifier, e.g. 'ON6E5R-DIYRecipe-Work-RecipeCollection'"
    },
    "parentCaseID": {
      "type": "string",
      "description": "Full handle of the parent case when creating a child case"
    },
    "content": {
      "type": "object",
      "description": "Initial field values for the case"
    },
    "pageInstructions": {
      "type": "array",
      "items": {"type": "object"},
      "description": "Embedded-page operations per the DX pageInstructions grammar"
    },
    "attachments": {
      "type": "array",
      "items": {"type": "object"},
      "description": "Attachments to add at creation"
    },
    "viewType": {
      "type": "string",
      "enum": ["none", "form", "page"],
      "description": "UI metadata to include in the response"
    },
    %s
  },
  "required": ["caseTypeID"]
}`, common.SessionCredentialsProperty))
}

func (t *CreateCase) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[createCaseParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "caseTypeID", Value: p.CaseTypeID}); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "none", "form", "page"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Create Case", fctx, func(ctx context.Context) (*dx.Result, error) {
		in := dx.CreateCaseInput{
			CaseTypeID:       p.CaseTypeID,
			ParentCaseID:     p.ParentCaseID,
			Content:          p.Content,
			PageInstructions: p.PageInstructions,
			Attachments:      p.Attachments,
		}
		return t.deps.Client.CreateCase(ctx, sess, in, p.ViewType)
	}), nil
}

// --- get_case ---

type getCaseParams struct {
	common.SessionArgs
	CaseID   string `json:"caseID"`
	ViewType string `json:"viewType,omitempty"`
	PageName string `json:"pageName,omitempty"`
}

type GetCase struct {
	deps *common.Deps
}

func NewGetCase(deps *common.Deps) *GetCase { return &GetCase{deps: deps} }

func (t *GetCase) Name() string     { return "get_case" }
func (t *GetCase) Category() string { return category }
func (t *GetCase) Description() string {
	return "Get a case by its full handle: case info, stage, status, assignments, and the current eTag for conditional writes."
}
func (t *GetCase) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle, e.g. 'ON6E5R-DIYREC-WORK R-1001'"
    },
    "viewType": {
      "type": "string",
      "enum": ["none", "page"],
      "description": "Include the case page UI metadata"
    },
    "pageName": {
      "type": "string",
      "description": "Name of a specific page to return; only with viewType 'page'"
    },
    %s
  },
  "required": ["caseID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetCase) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "caseID", Value: p.CaseID}); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "none", "page"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Case", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCase(ctx, sess, p.CaseID, dx.GetCaseOptions{ViewType: p.ViewType, PageName: p.PageName})
	}), nil
}

// --- delete_case ---

type deleteCaseParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
}

type DeleteCase struct {
	deps *common.Deps
}

func NewDeleteCase(deps *common.Deps) *DeleteCase { return &DeleteCase{deps: deps} }

func (t *DeleteCase) Name() string     { return "delete_case" }
func (t *DeleteCase) Category() string { return category }
func (t *DeleteCase) Description() string {
	return "Delete a case that is still in the create stage. Cases past creation cannot be deleted through the DX API."
}
func (t *DeleteCase) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle of the case to delete"
    },
    %s
  },
  "required": ["caseID"]
}`, common.SessionCredentialsProperty))
}

func (t *DeleteCase) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[deleteCaseParams](params)
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
	return common.Run(ctx, "Delete Case", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.DeleteCase(ctx, sess, p.CaseID)
	}), nil
}

// --- get_case_stages ---

type getCaseStagesParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
}

type GetCaseStages struct {
	deps *common.Deps
}

func NewGetCaseStages(deps *common.Deps) *GetCaseStages { return &GetCaseStages{deps: deps} }

func (t *GetCaseStages) Name() string     { return "get_case_stages" }
func (t *GetCaseStages) Category() string { return category }
func (t *GetCaseStages) Description() string {
	return "List a case's stages with their processes, steps and visited status, showing where the case is in its lifecycle."
}
func (t *GetCaseStages) InputSchema() json.RawMessage {
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

func (t *GetCaseStages) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseStagesParams](params)
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
	return common.Run(ctx, "Get Case Stages", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseStages(ctx, sess, p.CaseID)
	}), nil
}

// --- get_case_view ---

type getCaseViewParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
	ViewID string `json:"viewID"`
}

type GetCaseView struct {
	deps *common.Deps
}

func NewGetCaseView(deps *common.Deps) *GetCaseView { return &GetCaseView{deps: deps} }

func (t *GetCaseView) Name() string     { return "get_case_view" }
func (t *GetCaseView) Category() string { return category }
func (t *GetCaseView) Description() string {
	return "Get a named view of a case, returning its UI structure and the data it binds."
}
func (t *GetCaseView) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "viewID": {
      "type": "string",
      "description": "Name of the view, e.g. 'pyDetails'"
    },
    %s
  },
  "required": ["caseID", "viewID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetCaseView) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseViewParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "viewID", Value: p.ViewID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Case View", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseView(ctx, sess, p.CaseID, p.ViewID)
	}), nil
}

// --- get_case_action ---

type getCaseActionParams struct {
	common.SessionArgs
	CaseID   string `json:"caseID"`
	ActionID string `json:"actionID"`
	ViewType string `json:"viewType,omitempty"`
}

type GetCaseAction struct {
	deps *common.Deps
}

func NewGetCaseAction(deps *common.Deps) *GetCaseAction { return &GetCaseAction{deps: deps} }

func (t *GetCaseAction) Name() string     { return "get_case_action" }
func (t *GetCaseAction) Category() string { return category }
func (t *GetCaseAction) Description() string {
	return "Get a case-wide action's form metadata and the current eTag required to perform it. Chain the eTag into perform_case_action."
}
func (t *GetCaseAction) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "actionID": {
      "type": "string",
      "description": "Case action name, e.g. 'pyUpdateCaseDetails'"
    },
    "viewType": {
      "type": "string",
      "enum": ["form", "page"],
      "default": "form",
      "description": "UI metadata to include"
    },
    %s
  },
  "required": ["caseID", "actionID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetCaseAction) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseActionParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "actionID", Value: p.ActionID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "form", "page"); msg != "" {
		return common.ValidationError(msg), nil
	}
	if p.ViewType == "" {
		p.ViewType = "form"
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Case Action", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseAction(ctx, sess, p.CaseID, p.ActionID, p.ViewType)
	}), nil
}

// --- perform_case_action ---

type performCaseActionParams struct {
	common.SessionArgs
	CaseID           string         `json:"caseID"`
	ActionID         string         `json:"actionID"`
	ETag             string         `json:"eTag,omitempty"`
	Content          map[string]any `json:"content,omitempty"`
	PageInstructions []any          `json:"pageInstructions,omitempty"`
	Attachments      []any          `json:"attachments,omitempty"`
	ViewType         string         `json:"viewType,omitempty"`
}

type PerformCaseAction struct {
	deps *common.Deps
}

func NewPerformCaseAction(deps *common.Deps) *PerformCaseAction {
	return &PerformCaseAction{deps: deps}
}

func (t *PerformCaseAction) Name() string     { return "perform_case_action" }
func (t *PerformCaseAction) Category() string { return category }
func (t *PerformCaseAction) Description() string {
	return "Perform a case-wide action such as updating case details. When eTag is omitted the tool first reads the case action (viewType=form) to obtain the current one."
}
func (t *PerformCaseAction) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "actionID": {
      "type": "string",
      "description": "Case action name to perform"
    },
    "eTag": {
      "type": "string",
      "description": "Current case eTag. Omit to let the tool fetch it with a preliminary read"
    },
    "content": {
      "type": "object",
      "description": "Field values to submit with the action"
    },
    "pageInstructions": {
      "type": "array",
      "items": {"type": "object"},
      "description": "Embedded-page operations per the DX pageInstructions grammar"
    },
    "attachments": {
      "type": "array",
      "items": {"type": "object"},
      "description": "Attachments to add while performing the action"
    },
    "viewType": {
      "type": "string",
      "enum": ["none", "form", "page"],
      "description": "UI metadata to include in the response"
    },
    %s
  },
  "required": ["caseID", "actionID"]
}`, common.SessionCredentialsProperty))
}

func (t *PerformCaseAction) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[performCaseActionParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "actionID", Value: p.ActionID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "none", "form", "page"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Perform Case Action", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag,
			dx.CaseActionRef(p.CaseID, p.ActionID), fctx)
		if err != nil {
			return nil, err
		}
		in := dx.ActionInput{
			Content:          p.Content,
			PageInstructions: p.PageInstructions,
			Attachments:      p.Attachments,
		}
		return t.deps.Client.PerformCaseAction(ctx, sess, p.CaseID, p.ActionID, etag, in, p.ViewType)
	}), nil
}

// --- change_to_next_stage ---

type changeToNextStageParams struct {
	common.SessionArgs
	CaseID   string `json:"caseID"`
	ETag     string `json:"eTag,omitempty"`
	ViewType string `json:"viewType,omitempty"`
}

type ChangeToNextStage struct {
	deps *common.Deps
}

func NewChangeToNextStage(deps *common.Deps) *ChangeToNextStage {
	return &ChangeToNextStage{deps: deps}
}

func (t *ChangeToNextStage) Name() string     { return "change_to_next_stage" }
func (t *ChangeToNextStage) Category() string { return category }
func (t *ChangeToNextStage) Description() string {
	return "Move a case to its next primary stage. When eTag is omitted the tool first reads the case to obtain the current one."
}
func (t *ChangeToNextStage) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "eTag": {
      "type": "string",
      "description": "Current case eTag. Omit to let the tool fetch it"
    },
    "viewType": {
      "type": "string",
      "enum": ["none", "form", "page"],
      "description": "UI metadata to include in the response"
    },
    %s
  },
  "required": ["caseID"]
}`, common.SessionCredentialsProperty))
}

func (t *ChangeToNextStage) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[changeToNextStageParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "caseID", Value: p.CaseID}); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "none", "form", "page"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Change To Next Stage", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag, dx.CaseRef(p.CaseID), fctx)
		if err != nil {
			return nil, err
		}
		return t.deps.Client.ChangeToNextStage(ctx, sess, p.CaseID, etag, p.ViewType)
	}), nil
}

// --- change_to_stage ---

type changeToStageParams struct {
	common.SessionArgs
	CaseID   string `json:"caseID"`
	StageID  string `json:"stageID"`
	ETag     string `json:"eTag,omitempty"`
	ViewType string `json:"viewType,omitempty"`
}

type ChangeToStage struct {
	deps *common.Deps
}

func NewChangeToStage(deps *common.Deps) *ChangeToStage { return &ChangeToStage{deps: deps} }

func (t *ChangeToStage) Name() string     { return "change_to_stage" }
func (t *ChangeToStage) Category() string { return category }
func (t *ChangeToStage) Description() string {
	return "Jump a case to a specific primary stage. When eTag is omitted the tool first reads the case to obtain the current one."
}
func (t *ChangeToStage) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "stageID": {
      "type": "string",
      "description": "Target stage ID, e.g. 'PRIM2'"
    },
    "eTag": {
      "type": "string",
      "description": "Current case eTag. Omit to let the tool fetch it"
    },
    "viewType": {
      "type": "string",
      "enum": ["none", "form", "page"],
      "description": "UI metadata to include in the response"
    },
    %s
  },
  "required": ["caseID", "stageID"]
}`, common.SessionCredentialsProperty))
}

func (t *ChangeToStage) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[changeToStageParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "stageID", Value: p.StageID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "none", "form", "page"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Change To Stage", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag, dx.CaseRef(p.CaseID), fctx)
		if err != nil {
			return nil, err
		}
		return t.deps.Client.ChangeToStage(ctx, sess, p.CaseID, p.StageID, etag, p.ViewType)
	}), nil
}
