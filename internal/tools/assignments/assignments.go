// Package assignments implements the assignment tools: get_assignment,
// get_next_assignment, get_assignment_action, perform_assignment_action,
// save_assignment_action, refresh_assignment_action.
package assignments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "assignments"

// --- get_assignment ---

type getAssignmentParams struct {
	common.SessionArgs
	AssignmentID string `json:"assignmentID"`
	ViewType     string `json:"viewType,omitempty"`
}

type GetAssignment struct {
	deps *common.Deps
}

func NewGetAssignment(deps *common.Deps) *GetAssignment { return &GetAssignment{deps: deps} }

func (t *GetAssignment) Name() string     { return "get_assignment" }
func (t *GetAssignment) Category() string { return category }
func (t *GetAssignment) Description() string {
	return "Get the details of an assignment by its full handle, including instructions and available actions. Use viewType to also return the form or page UI metadata."
}
func (t *GetAssignment) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "assignmentID": {
      "type": "string",
      "description": "Full assignment handle, e.g. 'ASSIGN-WORKLIST ON6E5R-DIYREC-WORK R-1001!APPROVAL_FLOW'"
    },
    "viewType": {
      "type": "string",
      "enum": ["form", "page"],
      "description": "UI metadata to include: the action form only, or the full page"
    },
    %s
  },
  "required": ["assignmentID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetAssignment) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getAssignmentParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "assignmentID", Value: p.AssignmentID}); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "form", "page"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Assignment", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetAssignment(ctx, sess, p.AssignmentID, p.ViewType)
	}), nil
}

// --- get_next_assignment ---

type getNextAssignmentParams struct {
	common.SessionArgs
	ViewType string `json:"viewType,omitempty"`
}

type GetNextAssignment struct {
	deps *common.Deps
}

func NewGetNextAssignment(deps *common.Deps) *GetNextAssignment {
	return &GetNextAssignment{deps: deps}
}

func (t *GetNextAssignment) Name() string     { return "get_next_assignment" }
func (t *GetNextAssignment) Category() string { return category }
func (t *GetNextAssignment) Description() string {
	return "Ask the work basket for the next assignment the authenticated operator should work on (Get Next Work)."
}
func (t *GetNextAssignment) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "viewType": {
      "type": "string",
      "enum": ["form", "page"],
      "description": "UI metadata to include with the assignment"
    },
    %s
  },
  "required": []
}`, common.SessionCredentialsProperty))
}

func (t *GetNextAssignment) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getNextAssignmentParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "form", "page"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Next Assignment", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetNextAssignment(ctx, sess, p.ViewType)
	}), nil
}

// --- get_assignment_action ---

type getAssignmentActionParams struct {
	common.SessionArgs
	AssignmentID string `json:"assignmentID"`
	ActionID     string `json:"actionID"`
	ViewType     string `json:"viewType,omitempty"`
}

type GetAssignmentAction struct {
	deps *common.Deps
}

func NewGetAssignmentAction(deps *common.Deps) *GetAssignmentAction {
	return &GetAssignmentAction{deps: deps}
}

func (t *GetAssignmentAction) Name() string     { return "get_assignment_action" }
func (t *GetAssignmentAction) Category() string { return category }
func (t *GetAssignmentAction) Description() string {
	return "Get an assignment action's form metadata and the current eTag required to perform it. The returned eTag can be chained into perform_assignment_action."
}
func (t *GetAssignmentAction) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "assignmentID": {
      "type": "string",
      "description": "Full assignment handle"
    },
    "actionID": {
      "type": "string",
      "description": "Flow action name, e.g. 'Approve' or 'CompleteReview'"
    },
    "viewType": {
      "type": "string",
      "enum": ["form", "page"],
      "default": "form",
      "description": "UI metadata to include"
    },
    %s
  },
  "required": ["assignmentID", "actionID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetAssignmentAction) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getAssignmentActionParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "assignmentID", Value: p.AssignmentID},
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
	return common.Run(ctx, "Get Assignment Action", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetAssignmentAction(ctx, sess, p.AssignmentID, p.ActionID, p.ViewType)
	}), nil
}

// --- perform_assignment_action ---

type performAssignmentActionParams struct {
	common.SessionArgs
	AssignmentID     string         `json:"assignmentID"`
	ActionID         string         `json:"actionID"`
	ETag             string         `json:"eTag,omitempty"`
	Content          map[string]any `json:"content,omitempty"`
	PageInstructions []any          `json:"pageInstructions,omitempty"`
	Attachments      []any          `json:"attachments,omitempty"`
	ViewType         string         `json:"viewType,omitempty"`
}

type PerformAssignmentAction struct {
	deps *common.Deps
}

func NewPerformAssignmentAction(deps *common.Deps) *PerformAssignmentAction {
	return &PerformAssignmentAction{deps: deps}
}

func (t *PerformAssignmentAction) Name() string     { return "perform_assignment_action" }
func (t *PerformAssignmentAction) Category() string { return category }
func (t *PerformAssignmentAction) Description() string {
	return "Submit an assignment action, advancing the case along its flow. When eTag is omitted the tool first reads the assignment action (viewType=form) to obtain the current one."
}
func (t *PerformAssignmentAction) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "assignmentID": {
      "type": "string",
      "description": "Full assignment handle"
    },
    "actionID": {
      "type": "string",
      "description": "Flow action name to perform"
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
  "required": ["assignmentID", "actionID"]
}`, common.SessionCredentialsProperty))
}

func (t *PerformAssignmentAction) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[performAssignmentActionParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "assignmentID", Value: p.AssignmentID},
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
	return common.Run(ctx, "Perform Assignment Action", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag,
			dx.AssignmentActionRef(p.AssignmentID, p.ActionID), fctx)
		if err != nil {
			return nil, err
		}
		in := dx.ActionInput{
			Content:          p.Content,
			PageInstructions: p.PageInstructions,
			Attachments:      p.Attachments,
		}
		return t.deps.Client.PerformAssignmentAction(ctx, sess, p.AssignmentID, p.ActionID, etag, in, p.ViewType)
	}), nil
}

// --- save_assignment_action ---

type saveAssignmentActionParams struct {
	common.SessionArgs
	AssignmentID     string         `json:"assignmentID"`
	ActionID         string         `json:"actionID"`
	ETag             string         `json:"eTag,omitempty"`
	Content          map[string]any `json:"content,omitempty"`
	PageInstructions []any          `json:"pageInstructions,omitempty"`
}

type SaveAssignmentAction struct {
	deps *common.Deps
}

func NewSaveAssignmentAction(deps *common.Deps) *SaveAssignmentAction {
	return &SaveAssignmentAction{deps: deps}
}

func (t *SaveAssignmentAction) Name() string     { return "save_assignment_action" }
func (t *SaveAssignmentAction) Category() string { return category }
func (t *SaveAssignmentAction) Description() string {
	return "Save form data against an assignment action without submitting it (save for later). When eTag is omitted the tool fetches the current one first."
}
func (t *SaveAssignmentAction) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "assignmentID": {
      "type": "string",
      "description": "Full assignment handle"
    },
    "actionID": {
      "type": "string",
      "description": "Flow action name whose form is being saved"
    },
    "eTag": {
      "type": "string",
      "description": "Current case eTag. Omit to let the tool fetch it"
    },
    "content": {
      "type": "object",
      "description": "Field values to save"
    },
    "pageInstructions": {
      "type": "array",
      "items": {"type": "object"},
      "description": "Embedded-page operations to save"
    },
    %s
  },
  "required": ["assignmentID", "actionID"]
}`, common.SessionCredentialsProperty))
}

func (t *SaveAssignmentAction) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[saveAssignmentActionParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "assignmentID", Value: p.AssignmentID},
		common.Field{Name: "actionID", Value: p.ActionID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Save Assignment Action", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag,
			dx.AssignmentActionRef(p.AssignmentID, p.ActionID), fctx)
		if err != nil {
			return nil, err
		}
		in := dx.ActionInput{
			Content:          p.Content,
			PageInstructions: p.PageInstructions,
		}
		return t.deps.Client.SaveAssignmentAction(ctx, sess, p.AssignmentID, p.ActionID, etag, in)
	}), nil
}

// --- refresh_assignment_action ---

type refreshAssignmentActionParams struct {
	common.SessionArgs
	AssignmentID string         `json:"assignmentID"`
	ActionID     string         `json:"actionID"`
	ETag         string         `json:"eTag,omitempty"`
	Content      map[string]any `json:"content,omitempty"`
	RefreshFor   string         `json:"refreshFor,omitempty"`
}

type RefreshAssignmentAction struct {
	deps *common.Deps
}

func NewRefreshAssignmentAction(deps *common.Deps) *RefreshAssignmentAction {
	return &RefreshAssignmentAction{deps: deps}
}

func (t *RefreshAssignmentAction) Name() string     { return "refresh_assignment_action" }
func (t *RefreshAssignmentAction) Category() string { return category }
func (t *RefreshAssignmentAction) Description() string {
	return "Recompute an assignment action's form after a field change, running the data transforms bound to the changed field (refreshFor)."
}
func (t *RefreshAssignmentAction) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "assignmentID": {
      "type": "string",
      "description": "Full assignment handle"
    },
    "actionID": {
      "type": "string",
      "description": "Flow action whose form is refreshed"
    },
    "eTag": {
      "type": "string",
      "description": "Current case eTag. Omit to let the tool fetch it"
    },
    "content": {
      "type": "object",
      "description": "Current form field values"
    },
    "refreshFor": {
      "type": "string",
      "description": "Property whose change triggered the refresh"
    },
    %s
  },
  "required": ["assignmentID", "actionID"]
}`, common.SessionCredentialsProperty))
}

func (t *RefreshAssignmentAction) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[refreshAssignmentActionParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "assignmentID", Value: p.AssignmentID},
		common.Field{Name: "actionID", Value: p.ActionID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Refresh Assignment Action", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag,
			dx.AssignmentActionRef(p.AssignmentID, p.ActionID), fctx)
		if err != nil {
			return nil, err
		}
		return t.deps.Client.RefreshAssignmentAction(ctx, sess, p.AssignmentID, p.ActionID, etag, p.Content, p.RefreshFor)
	}), nil
}
