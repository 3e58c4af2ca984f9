package dx

import (
	"context"
	"net/http"
)

// GetCaseTags lists the tags on a case.
func (c *Client) GetCaseTags(ctx context.Context, sess *Session, caseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"cases", caseID, "tags"}})
}

// AddCaseTags attaches tags to a case.
func (c *Client) AddCaseTags(ctx context.Context, sess *Session, caseID string, tags []string) (*Result, error) {
	body := make([]map[string]any, 0, len(tags))
	for _, tag := range tags {
		body = append(body, map[string]any{"Name": tag})
	}
	req := &request{method: http.MethodPost, segments: []string{"cases", caseID, "tags"}}
	if err := req.withJSONBody(map[string]any{"tags": body}); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// DeleteCaseTag removes one tag from a case.
func (c *Client) DeleteCaseTag(ctx context.Context, sess *Session, caseID, tagID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodDelete, segments: []string{"cases", caseID, "tags", tagID}})
}
