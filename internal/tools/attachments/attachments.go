// Package attachments implements the attachment tools: upload_attachment,
// add_case_attachments, get_case_attachments, get_attachment,
// delete_attachment, get_attachment_categories.
package attachments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "attachments"

// --- upload_attachment ---

type uploadAttachmentParams struct {
	common.SessionArgs
	FilePath       string `json:"filePath,omitempty"`
	FileContent    string `json:"fileContent,omitempty"` // base64
	FileName       string `json:"fileName,omitempty"`
	AppendUniqueID *bool  `json:"appendUniqueIdToFileName,omitempty"`
}

type UploadAttachment struct {
	deps *common.Deps
}

func NewUploadAttachment(deps *common.Deps) *UploadAttachment {
	return &UploadAttachment{deps: deps}
}

func (t *UploadAttachment) Name() string     { return "upload_attachment" }
func (t *UploadAttachment) Category() string { return category }
func (t *UploadAttachment) Description() string {
	return "Stage a file as a temporary attachment and get its ID back. Provide either filePath (server-local file) or fileContent (base64) with fileName. Link the ID to a case with add_case_attachments."
}
func (t *UploadAttachment) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "filePath": {
      "type": "string",
      "description": "Path of a file readable by the gateway process"
    },
    "fileContent": {
      "type": "string",
      "description": "Base64-encoded file content; requires fileName"
    },
    "fileName": {
      "type": "string",
      "description": "File name to store. Defaults to the basename of filePath"
    },
    "appendUniqueIdToFileName": {
      "type": "boolean",
      "default": true,
      "description": "Append a unique suffix to avoid name collisions"
    },
    %s
  },
  "required": []
}`, common.SessionCredentialsProperty))
}

func (t *UploadAttachment) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[uploadAttachmentParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if p.FilePath == "" && p.FileContent == "" {
		return common.ValidationError("either filePath or fileContent is required"), nil
	}
	if p.FilePath != "" && p.FileContent != "" {
		return common.ValidationError("filePath and fileContent are mutually exclusive"), nil
	}
	if p.FileContent != "" && p.FileName == "" {
		return common.ValidationError("fileName is required with fileContent"), nil
	}
	appendUniqueID := true
	if p.AppendUniqueID != nil {
		appendUniqueID = *p.AppendUniqueID
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Upload Attachment", fctx, func(ctx context.Context) (*dx.Result, error) {
		if p.FilePath != "" {
			f, err := os.Open(p.FilePath)
			if err != nil {
				return nil, dx.NewError(dx.KindInvalidArgument, "cannot open %s: %v", p.FilePath, err)
			}
			defer f.Close()

			name := p.FileName
			if name == "" {
				name = filepath.Base(p.FilePath)
			}
			return t.deps.Client.UploadAttachment(ctx, sess, name, f, appendUniqueID)
		}

		decoded, err := base64.StdEncoding.DecodeString(p.FileContent)
		if err != nil {
			return nil, dx.NewError(dx.KindInvalidArgument, "fileContent is not valid base64: %v", err)
		}
		return t.deps.Client.UploadAttachment(ctx, sess, p.FileName, bytes.NewReader(decoded), appendUniqueID)
	}), nil
}

// --- add_case_attachments ---

type addCaseAttachmentsParams struct {
	common.SessionArgs
	CaseID      string           `json:"caseID"`
	Attachments []map[string]any `json:"attachments"`
}

type AddCaseAttachments struct {
	deps *common.Deps
}

func NewAddCaseAttachments(deps *common.Deps) *AddCaseAttachments {
	return &AddCaseAttachments{deps: deps}
}

func (t *AddCaseAttachments) Name() string     { return "add_case_attachments" }
func (t *AddCaseAttachments) Category() string { return category }
func (t *AddCaseAttachments) Description() string {
	return "Link uploaded attachments or URLs to a case. File entries reference IDs from upload_attachment; URL entries carry url and name."
}
func (t *AddCaseAttachments) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "attachments": {
      "type": "array",
      "description": "Attachment descriptors: {type: 'File', category, ID} or {type: 'URL', category, url, name}",
      "items": {"type": "object"}
    },
    %s
  },
  "required": ["caseID", "attachments"]
}`, common.SessionCredentialsProperty))
}

func (t *AddCaseAttachments) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[addCaseAttachmentsParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "caseID", Value: p.CaseID}); msg != "" {
		return common.ValidationError(msg), nil
	}
	if len(p.Attachments) == 0 {
		return common.ValidationError("attachments is required"), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Add Case Attachments", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.AddCaseAttachments(ctx, sess, p.CaseID, p.Attachments)
	}), nil
}

// --- get_case_attachments ---

type getCaseAttachmentsParams struct {
	common.SessionArgs
	CaseID            string `json:"caseID"`
	IncludeThumbnails bool   `json:"includeThumbnails,omitempty"`
}

type GetCaseAttachments struct {
	deps *common.Deps
}

func NewGetCaseAttachments(deps *common.Deps) *GetCaseAttachments {
	return &GetCaseAttachments{deps: deps}
}

func (t *GetCaseAttachments) Name() string     { return "get_case_attachments" }
func (t *GetCaseAttachments) Category() string { return category }
func (t *GetCaseAttachments) Description() string {
	return "List the attachments of a case with their categories and download links."
}
func (t *GetCaseAttachments) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "caseID": {
      "type": "string",
      "description": "Full case handle"
    },
    "includeThumbnails": {
      "type": "boolean",
      "description": "Include image thumbnails in the listing"
    },
    %s
  },
  "required": ["caseID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetCaseAttachments) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getCaseAttachmentsParams](params)
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
	return common.Run(ctx, "Get Case Attachments", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetCaseAttachments(ctx, sess, p.CaseID, p.IncludeThumbnails)
	}), nil
}

// --- get_attachment ---

type getAttachmentParams struct {
	common.SessionArgs
	AttachmentID string `json:"attachmentID"`
}

type GetAttachment struct {
	deps *common.Deps
}

func NewGetAttachment(deps *common.Deps) *GetAttachment { return &GetAttachment{deps: deps} }

func (t *GetAttachment) Name() string     { return "get_attachment" }
func (t *GetAttachment) Category() string { return category }
func (t *GetAttachment) Description() string {
	return "Fetch an attachment. JSON responses (such as URL attachments) are rendered as returned; a non-JSON file payload is summarized by its size and encoding, and the content itself is not included."
}
func (t *GetAttachment) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "attachmentID": {
      "type": "string",
      "description": "Attachment ID from get_case_attachments"
    },
    %s
  },
  "required": ["attachmentID"]
}`, common.SessionCredentialsProperty))
}

func (t *GetAttachment) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getAttachmentParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "attachmentID", Value: p.AttachmentID}); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	res := common.Run(ctx, "Get Attachment", fctx, func(ctx context.Context) (*dx.Result, error) {
		r, err := t.deps.Client.GetAttachmentContent(ctx, sess, p.AttachmentID)
		if err != nil {
			return nil, err
		}
		// Binary payloads arrive undecoded; summarize instead of dumping.
		if r.Data == nil && len(r.Raw) > 0 {
			r.Data = map[string]any{
				"contentBytes":    len(r.Raw),
				"contentEncoding": "base64",
			}
		}
		return r, nil
	})
	return res, nil
}

// --- delete_attachment ---

type deleteAttachmentParams struct {
	common.SessionArgs
	AttachmentID string `json:"attachmentID"`
}

type DeleteAttachment struct {
	deps *common.Deps
}

func NewDeleteAttachment(deps *common.Deps) *DeleteAttachment {
	return &DeleteAttachment{deps: deps}
}

func (t *DeleteAttachment) Name() string     { return "delete_attachment" }
func (t *DeleteAttachment) Category() string { return category }
func (t *DeleteAttachment) Description() string {
	return "Remove an attachment from its case. Requires the delete privilege on the attachment category."
}
func (t *DeleteAttachment) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "attachmentID": {
      "type": "string",
      "description": "Attachment ID to delete"
    },
    %s
  },
  "required": ["attachmentID"]
}`, common.SessionCredentialsProperty))
}

func (t *DeleteAttachment) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[deleteAttachmentParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "attachmentID", Value: p.AttachmentID}); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Delete Attachment", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.DeleteAttachment(ctx, sess, p.AttachmentID)
	}), nil
}

// --- get_attachment_categories ---

type getAttachmentCategoriesParams struct {
	common.SessionArgs
	CaseID string `json:"caseID"`
}

type GetAttachmentCategories struct {
	deps *common.Deps
}

func NewGetAttachmentCategories(deps *common.Deps) *GetAttachmentCategories {
	return &GetAttachmentCategories{deps: deps}
}

func (t *GetAttachmentCategories) Name() string     { return "get_attachment_categories" }
func (t *GetAttachmentCategories) Category() string { return category }
func (t *GetAttachmentCategories) Description() string {
	return "List the attachment categories available on a case and the operator's privileges on each."
}
func (t *GetAttachmentCategories) InputSchema() json.RawMessage {
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

func (t *GetAttachmentCategories) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getAttachmentCategoriesParams](params)
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
	return common.Run(ctx, "Get Attachment Categories", fctx, func(ctx context.Context) (*dx.Result, error) {
		return t.deps.Client.GetAttachmentCategories(ctx, sess, p.CaseID)
	}), nil
}
