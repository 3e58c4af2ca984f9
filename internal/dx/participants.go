package dx

import (
	"context"
	"net/http"
	"net/url"
)

// GetCaseParticipants lists the participants of a case.
func (c *Client) GetCaseParticipants(ctx context.Context, sess *Session, caseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"cases", caseID, "participants"}})
}

// GetParticipantRoles lists the participant roles defined on a case type.
func (c *Client) GetParticipantRoles(ctx context.Context, sess *Session, caseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"cases", caseID, "participant_roles"}})
}

// GetParticipant retrieves one participant of a case. The response carries
// the eTag needed for participant writes.
func (c *Client) GetParticipant(ctx context.Context, sess *Session, caseID, participantID, viewType string) (*Result, error) {
	req := &request{method: http.MethodGet, segments: []string{"cases", caseID, "participants", participantID}}
	if viewType != "" {
		req.query = url.Values{"viewType": {viewType}}
	}
	return c.call(ctx, sess, req)
}

// ParticipantInput is the body of participant create/update writes.
type ParticipantInput struct {
	ParticipantRoleID string         `json:"participantRoleID,omitempty"`
	Content           map[string]any `json:"content,omitempty"`
}

// AddParticipant adds a participant to a case under optimistic concurrency
// against the case eTag.
func (c *Client) AddParticipant(ctx context.Context, sess *Session, caseID, etag string, in ParticipantInput, viewType string) (*Result, error) {
	req := &request{
		method:   http.MethodPost,
		segments: []string{"cases", caseID, "participants"},
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

// UpdateParticipant patches a participant's details. etag must be the
// participant's current eTag.
func (c *Client) UpdateParticipant(ctx context.Context, sess *Session, caseID, participantID, etag string, content map[string]any) (*Result, error) {
	req := &request{
		method:   http.MethodPatch,
		segments: []string{"cases", caseID, "participants", participantID},
		etag:     etag,
	}
	if err := req.withJSONBody(map[string]any{"content": content}); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// DeleteParticipant removes a participant from a case.
func (c *Client) DeleteParticipant(ctx context.Context, sess *Session, caseID, participantID, etag string) (*Result, error) {
	return c.call(ctx, sess, &request{
		method:   http.MethodDelete,
		segments: []string{"cases", caseID, "participants", participantID},
		etag:     etag,
	})
}
