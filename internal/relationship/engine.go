package relationship

import (
	"context"

	"dueboard/backend/internal/models"
)

// Engine applies the friend-request state machine on top of a Store.
//
// Every mutation runs inside Store.Mutate, so the read-decide-write sequence
// for a pair is atomic with respect to concurrent transitions on the same
// pair. Transitions that drop an accepted friendship (Remove, Block) also
// delete the pair's collaborator attachments in the same transaction; copies
// already materialized for a collaborator stay untouched.
type Engine struct {
	store Store
}

// NewEngine creates a relationship engine backed by store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// SendRequest creates a pending edge from requester to target.
func (e *Engine) SendRequest(ctx context.Context, requesterID, targetID uint) (models.RelationshipStatus, error) {
	if requesterID == targetID {
		return models.RelationshipNone, ErrSelfRelationship
	}

	err := e.store.Mutate(ctx, requesterID, targetID, func(tx Tx) error {
		edge, err := tx.Edge()
		if err != nil {
			return err
		}
		if edge == nil {
			return tx.Create(models.RelationshipPending, requesterID)
		}
		switch edge.Status {
		case models.RelationshipBlocked:
			return ErrBlocked
		case models.RelationshipPending:
			return ErrAlreadyPending
		case models.RelationshipAccepted:
			return ErrAlreadyFriends
		}
		return ErrAlreadyPending
	})
	if err != nil {
		return models.RelationshipNone, err
	}
	return models.RelationshipPending, nil
}

// Accept accepts a pending request. Only the non-initiator may accept.
func (e *Engine) Accept(ctx context.Context, accepterID, requesterID uint) (models.RelationshipStatus, error) {
	if accepterID == requesterID {
		return models.RelationshipNone, ErrSelfRelationship
	}

	err := e.store.Mutate(ctx, accepterID, requesterID, func(tx Tx) error {
		edge, err := tx.Edge()
		if err != nil {
			return err
		}
		if edge == nil {
			return ErrNotFound
		}
		switch edge.Status {
		case models.RelationshipBlocked:
			return ErrBlocked
		case models.RelationshipAccepted:
			return ErrAlreadyFriends
		case models.RelationshipPending:
			if edge.InitiatorID == accepterID {
				return ErrNotAuthorized
			}
			return tx.SetStatus(models.RelationshipAccepted, edge.InitiatorID)
		}
		return ErrNotFound
	})
	if err != nil {
		return models.RelationshipNone, err
	}
	return models.RelationshipAccepted, nil
}

// Decline removes a pending request. Only the non-initiator may decline;
// the edge is deleted, so the requester may resend later.
func (e *Engine) Decline(ctx context.Context, declinerID, requesterID uint) (models.RelationshipStatus, error) {
	if declinerID == requesterID {
		return models.RelationshipNone, ErrSelfRelationship
	}

	err := e.store.Mutate(ctx, declinerID, requesterID, func(tx Tx) error {
		edge, err := tx.Edge()
		if err != nil {
			return err
		}
		if edge == nil || edge.Status != models.RelationshipPending {
			return ErrNotFound
		}
		if edge.InitiatorID == declinerID {
			return ErrNotAuthorized
		}
		return tx.Delete()
	})
	if err != nil {
		return models.RelationshipNone, err
	}
	return models.RelationshipNone, nil
}

// Remove deletes an accepted friendship (either party) or cancels a pending
// request. Removing a friendship also drops the pair's collaborator
// attachments.
func (e *Engine) Remove(ctx context.Context, actorID, otherID uint) (models.RelationshipStatus, error) {
	if actorID == otherID {
		return models.RelationshipNone, ErrSelfRelationship
	}

	err := e.store.Mutate(ctx, actorID, otherID, func(tx Tx) error {
		edge, err := tx.Edge()
		if err != nil {
			return err
		}
		if edge == nil {
			return ErrNotFound
		}
		switch edge.Status {
		case models.RelationshipBlocked:
			return ErrBlocked
		case models.RelationshipAccepted:
			if err := tx.DeleteAttachmentsBetween(); err != nil {
				return err
			}
			return tx.Delete()
		case models.RelationshipPending:
			return tx.Delete()
		}
		return ErrNotFound
	})
	if err != nil {
		return models.RelationshipNone, err
	}
	return models.RelationshipNone, nil
}

// Block places a block from blocker on the other user, overwriting any
// non-blocked state. Blocking a friend drops the pair's collaborator
// attachments in the same transaction. Re-blocking by the same blocker is a
// no-op; a pair already blocked by the other side cannot be blocked again.
func (e *Engine) Block(ctx context.Context, blockerID, targetID uint) (models.RelationshipStatus, error) {
	if blockerID == targetID {
		return models.RelationshipNone, ErrSelfRelationship
	}

	err := e.store.Mutate(ctx, blockerID, targetID, func(tx Tx) error {
		edge, err := tx.Edge()
		if err != nil {
			return err
		}
		if edge == nil {
			return tx.Create(models.RelationshipBlocked, blockerID)
		}
		switch edge.Status {
		case models.RelationshipBlocked:
			if edge.InitiatorID == blockerID {
				return nil
			}
			return ErrBlocked
		case models.RelationshipAccepted:
			if err := tx.DeleteAttachmentsBetween(); err != nil {
				return err
			}
			return tx.SetStatus(models.RelationshipBlocked, blockerID)
		default:
			return tx.SetStatus(models.RelationshipBlocked, blockerID)
		}
	})
	if err != nil {
		return models.RelationshipNone, err
	}
	return models.RelationshipBlocked, nil
}

// Unblock removes a block. Only the blocker may unblock; the edge is deleted.
func (e *Engine) Unblock(ctx context.Context, actorID, otherID uint) (models.RelationshipStatus, error) {
	if actorID == otherID {
		return models.RelationshipNone, ErrSelfRelationship
	}

	err := e.store.Mutate(ctx, actorID, otherID, func(tx Tx) error {
		edge, err := tx.Edge()
		if err != nil {
			return err
		}
		if edge == nil || edge.Status != models.RelationshipBlocked {
			return ErrNotFound
		}
		if edge.InitiatorID != actorID {
			return ErrNotAuthorized
		}
		return tx.Delete()
	})
	if err != nil {
		return models.RelationshipNone, err
	}
	return models.RelationshipNone, nil
}

// StatusBetween reports the relationship status of a pair. The result is
// symmetric: StatusBetween(a, b) == StatusBetween(b, a).
func (e *Engine) StatusBetween(ctx context.Context, userA, userB uint) (models.RelationshipStatus, error) {
	if userA == userB {
		return models.RelationshipNone, ErrSelfRelationship
	}
	return e.store.StatusBetween(ctx, userA, userB)
}

// ListFriends returns the user's accepted friends.
func (e *Engine) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return e.store.ListByStatus(ctx, userID, models.RelationshipAccepted, DirectionAny)
}

// ListPending returns users whose requests to userID are awaiting a response.
func (e *Engine) ListPending(ctx context.Context, userID uint) ([]models.User, error) {
	return e.store.ListByStatus(ctx, userID, models.RelationshipPending, DirectionIncoming)
}

// ListSent returns users userID has sent requests to.
func (e *Engine) ListSent(ctx context.Context, userID uint) ([]models.User, error) {
	return e.store.ListByStatus(ctx, userID, models.RelationshipPending, DirectionOutgoing)
}

// ListBlocked returns users blocked by userID.
func (e *Engine) ListBlocked(ctx context.Context, userID uint) ([]models.User, error) {
	return e.store.ListByStatus(ctx, userID, models.RelationshipBlocked, DirectionOutgoing)
}

// Stats returns the user's relationship counts.
func (e *Engine) Stats(ctx context.Context, userID uint) (*Stats, error) {
	return e.store.Stats(ctx, userID)
}
