package dx

import (
	"context"
	"net/http"
	"net/url"
)

// CreateCaseInput is the body of a case creation request.
type CreateCaseInput struct {
	CaseTypeID       string         `json:"caseTypeID"`
	ParentCaseID     string         `json:"parentCaseID,omitempty"`
	Content          map[string]any `json:"content,omitempty"`
	PageInstructions []any          `json:"pageInstructions,omitempty"`
	Attachments      []any          `json:"attachments,omitempty"`
}

// CreateCase starts a new case of the given type.
func (c *Client) CreateCase(ctx context.Context, sess *Session, in CreateCaseInput, viewType string) (*Result, error) {
	req := &request{method: http.MethodPost, segments: []string{"cases"}}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	if err := req.withJSONBody(in); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// GetCaseOptions selects what a case read returns.
type GetCaseOptions struct {
	ViewType string // "none", "form" or "page"
	PageName string // page-specific view, only with ViewType "page"
}

// GetCase retrieves a case by its full handle. The response carries the
// case eTag for subsequent conditional writes.
func (c *Client) GetCase(ctx context.Context, sess *Session, caseID string, opts GetCaseOptions) (*Result, error) {
	req := &request{method: http.MethodGet, segments: []string{"cases", caseID}, query: url.Values{}}
	if opts.ViewType != "" {
		req.query.Set("viewType", opts.ViewType)
	}
	if opts.PageName != "" {
		req.query.Set("pageName", opts.PageName)
	}
	return c.call(ctx, sess, req)
}

// DeleteCase deletes a case that is still in the create stage.
func (c *Client) DeleteCase(ctx context.Context, sess *Session, caseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodDelete, segments: []string{"cases", caseID}})
}

// GetCaseStages lists the stages of a case with their visited status.
func (c *Client) GetCaseStages(ctx context.Context, sess *Session, caseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"cases", caseID, "stages"}})
}

// GetCaseView retrieves a named view of a case.
func (c *Client) GetCaseView(ctx context.Context, sess *Session, caseID, viewID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"cases", caseID, "views", viewID}})
}

// GetCaseAction retrieves a case-wide action's metadata and, importantly,
// the current case eTag required to perform it.
func (c *Client) GetCaseAction(ctx context.Context, sess *Session, caseID, actionID, viewType string) (*Result, error) {
	req := &request{method: http.MethodGet, segments: []string{"cases", caseID, "actions", actionID}}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	return c.call(ctx, sess, req)
}

// ActionInput is the shared body shape of perform/save action writes.
type ActionInput struct {
	Content          map[string]any `json:"content,omitempty"`
	PageInstructions []any          `json:"pageInstructions,omitempty"`
	Attachments      []any          `json:"attachments,omitempty"`
}

// PerformCaseAction submits a case-wide action under optimistic
// concurrency. etag must be the current case eTag.
func (c *Client) PerformCaseAction(ctx context.Context, sess *Session, caseID, actionID, etag string, in ActionInput, viewType string) (*Result, error) {
	req := &request{
		method:   http.MethodPatch,
		segments: []string{"cases", caseID, "actions", actionID},
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

// ChangeToNextStage moves a case to its next primary stage.
func (c *Client) ChangeToNextStage(ctx context.Context, sess *Session, caseID, etag, viewType string) (*Result, error) {
	req := &request{
		method:   http.MethodPost,
		segments: []string{"cases", caseID, "stages", "next"},
		etag:     etag,
	}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	return c.call(ctx, sess, req)
}

// ChangeToStage jumps a case to the given primary stage.
func (c *Client) ChangeToStage(ctx context.Context, sess *Session, caseID, stageID, etag, viewType string) (*Result, error) {
	req := &request{
		method:   http.MethodPut,
		segments: []string{"cases", caseID, "stages", stageID},
		etag:     etag,
	}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	return c.call(ctx, sess, req)
}

// GetRelatedCases lists the cases related to the given one.
func (c *Client) GetRelatedCases(ctx context.Context, sess *Session, caseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"cases", caseID, "related_cases"}})
}

// RelateCases links a set of existing cases to the given case.
func (c *Client) RelateCases(ctx context.Context, sess *Session, caseID string, cases []map[string]any) (*Result, error) {
	req := &request{method: http.MethodPost, segments: []string{"cases", caseID, "related_cases"}}
	if err := req.withJSONBody(map[string]any{"cases": cases}); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// UnrelateCase removes one related-case link.
func (c *Client) UnrelateCase(ctx context.Context, sess *Session, caseID, relatedCaseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodDelete, segments: []string{"cases", caseID, "related_cases", relatedCaseID}})
}
