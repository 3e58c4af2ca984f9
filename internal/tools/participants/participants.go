// Package participants implements the case participant tools:
// get_case_participants, get_participant_roles, get_participant,
// add_participant, update_participant, delete_participant.
package participants

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "participants"

// --- get_case_participants ---

type getCaseParticipantsParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
}

type GetCaseParticipants struct {
	deps *common.Deps
}

func NewGetCaseParticipants(deps *common.Deps) *GetCaseParticipants {
	return &GetCaseParticipants{deps: deps}
}

func (t *GetCaseParticipants) Name() string     { return "get_case_participants" }
func (t *GetCaseParticipants) Category() string { return category }
func (t *GetCaseParticipants) Description() string {
	return "List the participants of a case with their roles."
}
func (t *GetCaseParticipants) InputSchema() json.RawMessage {
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

func (t *GetCaseParticipants) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseParticipantsParams](params)
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
	return common.Run(ctx, "Get Case Participants", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseParticipants(ctx, sess, p.CaseID)
	}), nil
}

// --- get_participant_roles ---

type getParticipantRolesParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
}

type GetParticipantRoles struct {
	deps *common.Deps
}

func NewGetParticipantRoles(deps *common.Deps) *GetParticipantRoles {
	return &GetParticipantRoles{deps: deps}
}

func (t *GetParticipantRoles) Name() string     { return "get_participant_roles" }
func (t *GetParticipantRoles) Category() string { return category }
func (t *GetParticipantRoles) Description() string {
	return "List the participant roles defined on a case's type, for use with add_participant."
}
func (t *GetParticipantRoles) InputSchema() json.RawMessage {
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

func (t *GetParticipantRoles) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getParticipantRolesParams](params)
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
	return common.Run(ctx, "Get Participant Roles", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetParticipantRoles(ctx, sess, p.CaseID)
	}), nil
}

// --- get_participant ---

type getParticipantParams struct {
	common.SessionArgs
	CaseID        string `json:"caseID"`
	ParticipantID string `json:"participantID"`
	ViewType      string `json:"viewType,omitempty"`
}

type GetParticipant struct {
	deps *common.Deps
}

func NewGetParticipant(deps *common.Deps) *GetParticipant { return &GetParticipant{deps: deps} }

func (t *GetParticipant) Name() string     { return "get_participant" }
func (t *GetParticipant) Category() string { return category }
func (t *GetParticipant) Description() string {
	return "Get one participant of a case, including the eTag needed to update or remove them."
}
func (t *GetParticipant) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "participantID": {
      "type": "string",
      "description": "Participant ID from get_case_participants"
    },
    "viewType": {
      "type": "string",
      "enum": ["form", "none"],
      "description": "Include the participant form UI metadata"
    },
    %s
  },
  "required": ["caseID", "participantID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetParticipant) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getParticipantParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "participantID", Value: p.ParticipantID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "form", "none"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Participant", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetParticipant(ctx, sess, p.CaseID, p.ParticipantID, p.ViewType)
	}), nil
}

// --- add_participant ---

type addParticipantParams struct {
	common.SessionArgs
	CaseID            string         `json:"caseID"`
	ParticipantRoleID string         `json:"participantRoleID"`
	Content           map[string]any `json:"content,omitempty"`
	ETag              string         `json:"eTag,omitempty"`
	ViewType          string         `json:"viewType,omitempty"`
}

type AddParticipant struct {
	deps *common.Deps
}

func NewAddParticipant(deps *common.Deps) *AddParticipant { return &AddParticipant{deps: deps} }

func (t *AddParticipant) Name() string     { return "add_participant" }
func (t *AddParticipant) Category() string { return category }
func (t *AddParticipant) Description() string {
	return "Add a participant to a case under a role. When eTag is omitted the tool first reads the case to obtain the current one."
}
func (t *AddParticipant) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "participantRoleID": {
      "type": "string",
      "description": "Role ID from get_participant_roles"
    },
    "content": {
      "type": "object",
      "description": "Participant details, e.g. pyFirstName, pyLastName, pyEmail1"
    },
    "eTag": {
      "type": "string",
      "description": "Current case eTag. Omit to let the tool fetch it"
    },
    "viewType": {
      "type": "string",
      "enum": ["form", "none"],
      "description": "UI metadata to include in the response"
    },
    %s
  },
  "required": ["caseID", "participantRoleID"]
}`, common.SessionCredentialsProperty))
}

func (t *AddParticipant) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[addParticipantParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "participantRoleID", Value: p.ParticipantRoleID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}
	if msg := common.EnumViolation("viewType", p.ViewType, "form", "none"); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Add Participant", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag, dx.CaseRef(p.CaseID), fctx)
		if err != nil {
			return nil, err
		}
		in := dx.ParticipantInput{
			ParticipantRoleID: p.ParticipantRoleID,
			Content:           p.Content,
		}
		return t.deps.Client.AddParticipant(ctx, sess, p.CaseID, etag, in, p.ViewType)
	}), nil
}

// --- update_participant ---

type updateParticipantParams struct {
	common.SessionArgs
	CaseID        string         `json:"caseID"`
	ParticipantID string         `json:"participantID"`
	Content       map[string]any `json:"content"`
	ETag          string         `json:"eTag,omitempty"`
}

type UpdateParticipant struct {
	deps *common.Deps
}

func NewUpdateParticipant(deps *common.Deps) *UpdateParticipant {
	return &UpdateParticipant{deps: deps}
}

func (t *UpdateParticipant) Name() string     { return "update_participant" }
func (t *UpdateParticipant) Category() string { return category }
func (t *UpdateParticipant) Description() string {
	return "Update a participant's details. When eTag is omitted the tool first reads the participant to obtain the current one."
}
func (t *UpdateParticipant) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "participantID": {
      "type": "string",
      "description": "Participant ID to update"
    },
    "content": {
      "type": "object",
      "description": "Participant fields to change"
    },
    "eTag": {
      "type": "string",
      "description": "Current participant eTag. Omit to let the tool fetch it"
    },
    %s
  },
  "required": ["caseID", "participantID", "content"]
}`, common.SessionCredentialsProperty))
}

func (t *UpdateParticipant) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[updateParticipantParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "participantID", Value: p.ParticipantID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}
	if len(p.Content) == 0 {
		return common.ValidationError("content is required"), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Update Participant", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag,
			dx.ParticipantRef(p.CaseID, p.ParticipantID), fctx)
		if err != nil {
			return nil, err
		}
		return t.deps.Client.UpdateParticipant(ctx, sess, p.CaseID, p.ParticipantID, etag, p.Content)
	}), nil
}

// --- delete_participant ---

type deleteParticipantParams struct {
	common.SessionArgs
	CaseID        string `json:"caseID"`
	ParticipantID string `json:"participantID"`
	ETag          string `json:"eTag,omitempty"`
}

type DeleteParticipant struct {
	deps *common.Deps
}

func NewDeleteParticipant(deps *common.Deps) *DeleteParticipant {
	return &DeleteParticipant{deps: deps}
}

func (t *DeleteParticipant) Name() string     { return "delete_participant" }
func (t *DeleteParticipant) Category() string { return category }
func (t *DeleteParticipant) Description() string {
	return "Remove a participant from a case. When eTag is omitted the tool first reads the participant to obtain the current one."
}
func (t *DeleteParticipant) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "participantID": {
      "type": "string",
      "description": "Participant ID to remove"
    },
    "eTag": {
      "type": "string",
      "description": "Current participant eTag. Omit to let the tool fetch it"
    },
    %s
  },
  "required": ["caseID", "participantID"]
}`, common.SessionCredentialsProperty))
}

func (t *DeleteParticipant) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[deleteParticipantParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "participantID", Value: p.ParticipantID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Delete Participant", fctx, func(ctx context.Context) (*dx.Result, error) {
		etag, err := common.FetchETagIfMissing(ctx, t.deps, sess, p.ETag,
			dx.ParticipantRef(p.CaseID, p.ParticipantID), fctx)
		if err != nil {
			return nil, err
		}
		return t.deps.Client.DeleteParticipant(ctx, sess, p.CaseID, p.ParticipantID, etag)
	}), nil
}
