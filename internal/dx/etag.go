package dx

import (
	"context"
	"fmt"
	"strings"
)

// EntityRef names the read endpoint a write tool uses to obtain the current
// eTag when the caller omitted one. Each write tool that allows the
// omission declares exactly one ref, so the read logic lives in one place.
type EntityRef struct {
	kind         string
	caseID       string
	assignmentID string
	actionID     string
	partID       string
}

// AssignmentActionRef reads via GET /assignments/{id}/actions/{actionID}
// with viewType=form.
func AssignmentActionRef(assignmentID, actionID string) EntityRef {
	return EntityRef{kind: "assignment action", assignmentID: assignmentID, actionID: actionID}
}

// CaseActionRef reads via GET /cases/{id}/actions/{actionID} with
// viewType=form.
func CaseActionRef(caseID, actionID string) EntityRef {
	return EntityRef{kind: "case action", caseID: caseID, actionID: actionID}
}

// CaseRef reads via GET /cases/{id} with viewType=none.
func CaseRef(caseID string) EntityRef {
	return EntityRef{kind: "case", caseID: caseID}
}

// ParticipantRef reads via GET /cases/{id}/participants/{participantID}.
func ParticipantRef(caseID, participantID string) EntityRef {
	return EntityRef{kind: "participant", caseID: caseID, partID: participantID}
}

func (r EntityRef) String() string {
	parts := make([]string, 0, 4)
	if r.caseID != "" {
		parts = append(parts, r.caseID)
	}
	if r.assignmentID != "" {
		parts = append(parts, r.assignmentID)
	}
	if r.partID != "" {
		parts = append(parts, r.partID)
	}
	if r.actionID != "" {
		parts = append(parts, r.actionID)
	}
	return r.kind + " " + strings.Join(parts, "/")
}

// FetchETag performs the preliminary read for a write invoked without an
// eTag, using the same session as the write that follows. The read and the
// write are sequential on one logical call; a race against an external
// writer surfaces at the write as PRECONDITION_FAILED.
func (c *Client) FetchETag(ctx context.Context, sess *Session, ref EntityRef) (string, error) {
	var (
		res *Result
		err error
	)
	switch {
	case ref.assignmentID != "":
		res, err = c.GetAssignmentAction(ctx, sess, ref.assignmentID, ref.actionID, "form")
	case ref.actionID != "":
		res, err = c.GetCaseAction(ctx, sess, ref.caseID, ref.actionID, "form")
	case ref.partID != "":
		res, err = c.GetParticipant(ctx, sess, ref.caseID, ref.partID, "none")
	default:
		res, err = c.GetCase(ctx, sess, ref.caseID, GetCaseOptions{ViewType: "none"})
	}
	if err != nil {
		return "", &Error{
			Kind:    KindETagFetchFailed,
			Message: fmt.Sprintf("could not read %s to obtain the current eTag", ref),
			Cause:   err,
		}
	}

	etag := strings.TrimSpace(res.ETag)
	if etag == "" {
		return "", &Error{
			Kind:    KindETagMissing,
			Message: fmt.Sprintf("read of %s returned no eTag header", ref),
		}
	}
	return etag, nil
}
