package dx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// UploadAttachment stages a file as a temporary attachment and returns its
// ID for a later AddCaseAttachments call. The whole body is buffered up
// front so the 401 refresh path can replay it.
func (c *Client) UploadAttachment(ctx context.Context, sess *Session, fileName string, content io.Reader, appendUniqueID bool) (*Result, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("arrayOfFiles", fileName)
	if err != nil {
		return nil, fmt.Errorf("creating multipart part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading attachment content: %w", err)
	}
	if err := w.WriteField("appendUniqueIdToFileName", strconv.FormatBool(appendUniqueID)); err != nil {
		return nil, fmt.Errorf("writing multipart field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req := &request{
		method:      http.MethodPost,
		segments:    []string{"attachments", "upload"},
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}
	return c.call(ctx, sess, req)
}

// AddCaseAttachments links previously uploaded attachments (or URLs) to a
// case. Each entry follows the DX attachment descriptor shape.
func (c *Client) AddCaseAttachments(ctx context.Context, sess *Session, caseID string, attachments []map[string]any) (*Result, error) {
	req := &request{method: http.MethodPost, segments: []string{"cases", caseID, "attachments"}}
	if err := req.withJSONBody(map[string]any{"attachments": attachments}); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// GetCaseAttachments lists the attachments of a case.
func (c *Client) GetCaseAttachments(ctx context.Context, sess *Session, caseID string, includeThumbnails bool) (*Result, error) {
	req := &request{method: http.MethodGet, segments: []string{"cases", caseID, "attachments"}}
	if includeThumbnails {
		req.headers = map[string]string{"includeThumbnail": "true"}
	}
	return c.call(ctx, sess, req)
}

// GetAttachmentContent downloads an attachment. The payload arrives
// base64-encoded in Result.Raw; the caller decides how to present it.
func (c *Client) GetAttachmentContent(ctx context.Context, sess *Session, attachmentID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"attachments", attachmentID}})
}

// DeleteAttachment removes an attachment from its case.
func (c *Client) DeleteAttachment(ctx context.Context, sess *Session, attachmentID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodDelete, segments: []string{"attachments", attachmentID}})
}

// GetAttachmentCategories lists the attachment categories available on a
// case for the authenticated operator.
func (c *Client) GetAttachmentCategories(ctx context.Context, sess *Session, caseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"cases", caseID, "attachment_categories"}})
}
