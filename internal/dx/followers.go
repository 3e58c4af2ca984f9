package dx

import (
	"context"
	"net/http"
)

// GetCaseFollowers lists the operators following a case.
func (c *Client) GetCaseFollowers(ctx context.Context, sess *Session, caseID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodGet, segments: []string{"cases", caseID, "followers"}})
}

// AddCaseFollowers subscribes the given operators to case updates.
func (c *Client) AddCaseFollowers(ctx context.Context, sess *Session, caseID string, userIDs []string) (*Result, error) {
	users := make([]map[string]any, 0, len(userIDs))
	for _, id := range userIDs {
		users = append(users, map[string]any{"ID": id})
	}
	req := &request{method: http.MethodPost, segments: []string{"cases", caseID, "followers"}}
	if err := req.withJSONBody(map[string]any{"users": users}); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// DeleteCaseFollower unsubscribes one operator from a case.
func (c *Client) DeleteCaseFollower(ctx context.Context, sess *Session, caseID, followerID string) (*Result, error) {
	return c.call(ctx, sess, &request{method: http.MethodDelete, segments: []string{"cases", caseID, "followers", followerID}})
}
