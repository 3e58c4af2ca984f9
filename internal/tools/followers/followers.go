// Package followers implements the case follower tools: get_case_followers,
// add_case_followers, delete_case_follower.
package followers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "followers"

// --- get_case_followers ---

type getCaseFollowersParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
}

type GetCaseFollowers struct {
	deps *common.Deps
}

func NewGetCaseFollowers(deps *common.Deps) *GetCaseFollowers {
	return &GetCaseFollowers{deps: deps}
}

func (t *GetCaseFollowers) Name() string     { return "get_case_followers" }
func (t *GetCaseFollowers) Category() string { return category }
func (t *GetCaseFollowers) Description() string {
	return "List the operators following a case."
}
func (t *GetCaseFollowers) InputSchema() json.RawMessage {
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

func (t *GetCaseFollowers) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseFollowersParams](params)
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
	return common.Run(ctx, "Get Case Followers", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseFollowers(ctx, sess, p.CaseID)
	}), nil
}

// --- add_case_followers ---

type addCaseFollowersParams struct {
	common.SessionArgs
	CaseID string   `json:"caseID"`
	Users  []string `json:"users"`
}

type AddCaseFollowers struct {
	deps *common.Deps
}

func NewAddCaseFollowers(deps *common.Deps) *AddCaseFollowers {
	return &AddCaseFollowers{deps: deps}
}

func (t *AddCaseFollowers) Name() string     { return "add_case_followers" }
func (t *AddCaseFollowers) Category() string { return category }
func (t *AddCaseFollowers) Description() string {
	return "Subscribe one or more operators to a case's updates."
}
func (t *AddCaseFollowers) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "users": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Operator IDs to add as followers"
    },
    %s
  },
  "required": ["caseID", "users"]
}`, common.SessionCredentialsProperty))
}

func (t *AddCaseFollowers) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[addCaseFollowersParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "caseID", Value: p.CaseID}); msg != "" {
		return common.ValidationError(msg), nil
	}
	if len(p.Users) == 0 {
		return common.ValidationError("users is required"), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Add Case Followers", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.AddCaseFollowers(ctx, sess, p.CaseID, p.Users)
	}), nil
}

// --- delete_case_follower ---

type deleteCaseFollowerParams struct {
	common.SessionArgs
	CaseID     string `json:"caseID"`
	FollowerID string `json:"followerID"`
}

type DeleteCaseFollower struct {
	deps *common.Deps
}

func NewDeleteCaseFollower(deps *common.Deps) *DeleteCaseFollower {
	return &DeleteCaseFollower{deps: deps}
}

func (t *DeleteCaseFollower) Name() string     { return "delete_case_follower" }
func (t *DeleteCaseFollower) Category() string { return category }
func (t *DeleteCaseFollower) Description() string {
	return "Unsubscribe one operator from a case's updates."
}
func (t *DeleteCaseFollower) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "followerID": {
      "type": "string",
      "description": "Operator ID of the follower to remove"
    },
    %s
  },
  "required": ["caseID", "followerID"]
}`, common.SessionCredentialsProperty))
}

func (t *DeleteCaseFollower) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[deleteCaseFollowerParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "followerID", Value: p.FollowerID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Delete Case Follower", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.DeleteCaseFollower(ctx, sess, p.CaseID, p.FollowerID)
	}), nil
}
