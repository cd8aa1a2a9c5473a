package timeline

import (
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
)

// Error pairs a machine-checkable kind with a message, so precondition
// failures keep their identity all the way to the response body.
type Error struct {
    Kind    utils.ErrorKind
    Message string
}

func (e *Error) Error() string {
    return e.Message
}

// CheckAdmission decides whether a timeline accepts new posts. Checks run in
// order and the first violated one is returned: the timeline must exist,
// must be active, and must allow participant posting.
func CheckAdmission(t *models.Timeline) *Error {
    if t == nil {
        return &Error{Kind: utils.ErrNotFound, Message: "Timeline not found"}
    }
    if !t.IsActive {
        return &Error{Kind: utils.ErrForbidden, Message: "Timeline is not active"}
    }
    if !t.AllowParticipantPosting {
        return &Error{Kind: utils.ErrForbidden, Message: "Posting is disabled for this timeline"}
    }
    return nil
}

// AutoApprove decides the approval state of a newly admitted post. The event
// owner's own posts always bypass moderation; everyone else is gated by the
// require-approval setting. This keys only on identity equality with the
// owner, not on any role lookup.
func AutoApprove(requireApproval bool, authorID, ownerID uint) bool {
    return !requireApproval || authorID == ownerID
}
