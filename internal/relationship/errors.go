package relationship

import "errors"

var (
	// ErrSelfRelationship is returned when a user targets themselves.
	ErrSelfRelationship = errors.New("cannot have a relationship with yourself")

	// ErrAlreadyFriends is returned when a request is sent to an existing friend.
	ErrAlreadyFriends = errors.New("users are already friends")

	// ErrAlreadyPending is returned when a pending request already exists for the pair.
	ErrAlreadyPending = errors.New("a friend request is already pending")

	// ErrBlocked is returned when an action is attempted over a blocked edge.
	ErrBlocked = errors.New("relationship is blocked")

	// ErrNotFound is returned when acting on an edge that does not exist.
	ErrNotFound = errors.New("relationship not found")

	// ErrNotAuthorized is returned when the actor may not perform the transition,
	// e.g. the request initiator accepting their own request or a non-blocker unblocking.
	ErrNotAuthorized = errors.New("not authorized to perform this action")
)

// IsConflict reports whether err is one of the logical relationship errors, as
// opposed to an infrastructure failure. Logical errors must never be retried.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSelfRelationship) ||
		errors.Is(err, ErrAlreadyFriends) ||
		errors.Is(err, ErrAlreadyPending) ||
		errors.Is(err, ErrBlocked) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNotAuthorized)
}
