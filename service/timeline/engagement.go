package timeline

import (
	"errors"

	"github.com/kvejborg/regatta-server/cmd/utils"
	"gorm.io/gorm"
)

// likeOutcome maps the result of inserting a like row. The unique index on
// (post, user) turns a duplicate add into a conflict; any other store
// failure stays internal.
func likeOutcome(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: utils.ErrConflict, Message: "Post already liked"}
	}
	return &Error{Kind: utils.ErrInternal, Message: "Error liking post"}
}

// unlikeOutcome maps the result of deleting a like row. Removing a like that
// was never added reports not-found, it never touches the derived counter.
func unlikeOutcome(rowsAffected int64, err error) *Error {
	if err != nil {
		return &Error{Kind: utils.ErrInternal, Message: "Error unliking post"}
	}
	if rowsAffected == 0 {
		return &Error{Kind: utils.ErrNotFound, Message: "Like not found"}
	}
	return nil
}
