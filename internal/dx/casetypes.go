package dx

import (
	"context"
	"net/http"
)

// GetCaseTypes lists the case types the authenticated operator can create.
func (c *Client) GetCaseTypes(ctx context.Context, sess *Session) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"casetypes"}})
}

// GetCaseTypeAction retrieves the metadata of a case-type-level action,
// including its view structure for rendering the creation form.
func (c *Client) GetCaseTypeAction(ctx context.Context, sess *Session, caseTypeID, actionID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"casetypes", caseTypeID, "actions", actionID}})
}
