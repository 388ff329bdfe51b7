package relationship

import (
	"context"

	"dueboard/backend/internal/models"
)

// Direction narrows pending-request listings to one side of the edge.
type Direction int

const (
	// DirectionAny ignores the initiator.
	DirectionAny Direction = iota
	// DirectionIncoming selects edges initiated by the other user.
	DirectionIncoming
	// DirectionOutgoing selects edges initiated by the listed user.
	DirectionOutgoing
)

// Stats summarizes a user's relationship counts.
type Stats struct {
	Friends int64 `json:"friends"`
	Pending int64 `json:"pending"`
	Sent    int64 `json:"sent"`
	Blocked int64 `json:"blocked"`
}

// Tx exposes the mutations available inside a per-pair critical section.
// All operations apply to the single canonical edge of the pair the
// transaction was opened for.
type Tx interface {
	// Edge returns the current edge for the pair, or nil when none exists.
	Edge() (*models.Relationship, error)

	// Create inserts the pair's edge with the given status and initiator.
	Create(status models.RelationshipStatus, initiatorID uint) error

	// SetStatus updates the edge's status and initiator.
	SetStatus(status models.RelationshipStatus, initiatorID uint) error

	// Delete removes the edge, returning the pair to the implicit "none" state.
	Delete() error

	// DeleteAttachmentsBetween removes every collaborator attachment where one
	// side of the pair owns the deadline and the other is attached, in either
	// direction. Runs in the same transaction as the relationship mutation.
	DeleteAttachmentsBetween() error
}

// Store persists the relationship graph.
//
// Mutate runs fn inside a transaction that holds an exclusive lock on the
// canonical (min, max) pair, so concurrent transitions for the same two users
// are serialized even when no row exists yet.
type Store interface {
	Mutate(ctx context.Context, userA, userB uint, fn func(Tx) error) error
	StatusBetween(ctx context.Context, userA, userB uint) (models.RelationshipStatus, error)
	ListByStatus(ctx context.Context, userID uint, status models.RelationshipStatus, dir Direction) ([]models.User, error)
	Stats(ctx context.Context, userID uint) (*Stats, error)
}

// NormalizePair returns the pair in canonical storage order (lo < hi).
func NormalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
