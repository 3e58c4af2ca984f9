package dx

import (
	"context"
	"net/http"
	"net/url"
)

// GetAssignment retrieves an assignment by its full handle.
func (c *Client) GetAssignment(ctx context.Context, sess *Session, assignmentID, viewType string) (*Result, error) {
	req := &request{method: http.MethodGet, segments: []string{"assignments", assignmentID}}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	return c.call(ctx, sess, req)
}

// GetNextAssignment asks the upstream work basket for the next assignment
// for the authenticated operator.
func (c *Client) GetNextAssignment(ctx context.Context, sess *Session, viewType string) (*Result, error) {
	req := &request{method: http.MethodGet, segments: []string{"assignments", "next"}}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	return c.call(ctx, sess, req)
}

// GetAssignmentAction retrieves an assignment action's metadata along with
// the current eTag needed to perform it.
func (c *Client) GetAssignmentAction(ctx context.Context, sess *Session, assignmentID, actionID, viewType string) (*Result, error) {
	req := &request{method: http.MethodGet, segments: []string{"assignments", assignmentID, "actions", actionID}}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	return c.call(ctx, sess, req)
}

// PerformAssignmentAction submits an assignment action under optimistic
// concurrency, advancing the case along its flow.
func (c *Client) PerformAssignmentAction(ctx context.Context, sess *Session, assignmentID, actionID, etag string, in ActionInput, viewType string) (*Result, error) {
	req := &request{
		method:   http.MethodPatch,
		segments: []string{"assignments", assignmentID, "actions", actionID},
		etag:     etag,
	}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	if err := req.withJSONBody(in); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// SaveAssignmentAction saves form data against an assignment action without
// submitting it, "save for later" semantics.
func (c *Client) SaveAssignmentAction(ctx context.Context, sess *Session, assignmentID, actionID, etag string, in ActionInput) (*Result, error) {
	req := &request{
		method:   http.MethodPatch,
		segments: []string{"assignments", assignmentID, "actions", actionID, "save"},
		etag:     etag,
	}
	if err := req.withJSONBody(in); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// RefreshAssignmentAction recomputes an assignment action's form after a
// field change, running any data transforms tied to refreshFor.
func (c *Client) RefreshAssignmentAction(ctx context.Context, sess *Session, assignmentID, actionID, etag string, content map[string]any, refreshFor string) (*Result, error) {
	req := &request{
		method:   http.MethodPatch,
		segments: []string{"assignments", assignmentID, "actions", actionID, "refresh"},
		etag:     etag,
	}
	if refreshFor != "" {
		req.query = url.Values{"refreshFor": {refreshFor}}
	}
	if err := req.withJSONBody(map[string]any{"content": content}); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}
