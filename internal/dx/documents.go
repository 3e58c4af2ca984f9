package dx

import (
	"context"
	"net/http"
)

// GetDocumentContent downloads a document. The payload arrives
// base64-encoded in Result.Raw.
func (c *Client) GetDocumentContent(ctx context.Context, sess *Session, documentID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"documents", documentID}})
}

// RemoveCaseDocument unlinks a document from a case.
func (c *Client) RemoveCaseDocument(ctx context.Context, sess *Session, caseID, documentID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodDelete, segments: []string{"cases", caseID, "documents", documentID}})
}
