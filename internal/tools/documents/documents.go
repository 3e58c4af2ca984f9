// Package documents implements the document tools: get_document and
// remove_case_document.
package documents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "documents"

// --- get_document ---

type getDocumentParams struct {
	common.SessionArgs
	DocumentID string `json:"documentID"`
}

type GetDocument struct {
	deps *common.Deps
}

func NewGetDocument(deps *common.Deps) *GetDocument { return &GetDocument{deps: deps} }

func (t *GetDocument) Name() string     { return "get_document" }
func (t *GetDocument) Category() string { return category }
func (t *GetDocument) Description() string {
	return "Fetch a document. A non-JSON (base64) payload is summarized by its size and encoding; the content itself is not included."
}
func (t *GetDocument) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "documentID": {
      "type": "string",
      "description": "Document ID"
    },
    %s
  },
  "required": ["documentID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetDocument) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getDocumentParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "documentID", Value: p.DocumentID}); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Document", fctx, func(ctx context.Context) (*dx.Result, error) {
		r, err := t.deps.Client.GetDocumentContent(ctx, sess, p.DocumentID)
		if err != nil {
			return nil, err
		}
		if r.Data == nil && len(r.Raw) > 0 {
			r.Data = map[string]any{
				"contentBytes":    len(r.Raw),
				"contentEncoding": "base64",
			}
		}
		return r, nil
	}), nil
}

// --- remove_case_document ---

type removeCaseDocumentParams struct {
	common.SessionArgs
	CaseID     string `json:"caseID"`
	DocumentID string `json:"documentID"`
}

type RemoveCaseDocument struct {
	deps *common.Deps
}

func NewRemoveCaseDocument(deps *common.Deps) *RemoveCaseDocument {
	return &RemoveCaseDocument{deps: deps}
}

func (t *RemoveCaseDocument) Name() string     { return "remove_case_document" }
func (t *RemoveCaseDocument) Category() string { return category }
func (t *RemoveCaseDocument) Description() string {
	return "Unlink a document from a case."
}
func (t *RemoveCaseDocument) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "documentID": {
      "type": "string",
      "description": "Document ID to unlink"
    },
    %s
  },
  "required": ["caseID", "documentID"]
}`, common.SessionCredentialsProperty))
}

func (t *RemoveCaseDocument) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[removeCaseDocumentParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(
		common.Field{Name: "caseID", Value: p.CaseID},
		common.Field{Name: "documentID", Value: p.DocumentID},
	); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Remove Case Document", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.RemoveCaseDocument(ctx, sess, p.CaseID, p.DocumentID)
	}), nil
}
