package collab

import (
	"context"
	"fmt"

	"dueboard/backend/internal/deadline"
	"dueboard/backend/internal/models"
	"dueboard/backend/internal/notify"
)

// DefaultTitleSuffix is appended to a copy's title unless the caller
// overrides it.
const DefaultTitleSuffix = " (My Copy)"

// Options controls how invitees are attached.
type Options struct {
	// CreateCopies materializes an independent copy per invitee. When false,
	// invitees become pure collaborators on the original deadline.
	CreateCopies bool
	// IndividualCopies only matters when CreateCopies is set; when false all
	// invitees attach to the single original instead of receiving copies.
	IndividualCopies bool
	// TitleSuffix is appended to each copy's title.
	TitleSuffix string
	// NotifyCollaborators enqueues a deadline_shared intent per added invitee.
	NotifyCollaborators bool
}

// DefaultOptions returns the options used when the caller sends none.
func DefaultOptions() Options {
	return Options{
		CreateCopies:        true,
		IndividualCopies:    true,
		TitleSuffix:         DefaultTitleSuffix,
		NotifyCollaborators: true,
	}
}

// RelationshipChecker reports the relationship status between two users.
// Satisfied by *relationship.Engine.
type RelationshipChecker interface {
	StatusBetween(ctx context.Context, userA, userB uint) (models.RelationshipStatus, error)
}

// Engine fans a deadline out to a list of invitees: per invitee it verifies
// eligibility against the relationship graph, attaches the collaborator role,
// optionally materializes an independent copy, and enqueues a notification
// intent. Invitees are processed independently, each in its own locked
// transaction, so one invitee's skip never aborts the others.
type Engine struct {
	deadlines     deadline.Store
	relationships RelationshipChecker
	queue         notify.Enqueuer
}

// NewEngine creates a collaboration engine.
func NewEngine(deadlines deadline.Store, relationships RelationshipChecker, queue notify.Enqueuer) *Engine {
	return &Engine{deadlines: deadlines, relationships: relationships, queue: queue}
}

// AddCollaborators attaches the invitees to the deadline per opts.
//
// Only the owner may invite. Invitee ids are deduplicated before processing.
// The returned outcome lists every requested invitee in order with its
// added/skipped result; an all-skipped call returns normally with
// Success=false. Re-invoking with an already-added invitee is safe: the
// second call reports it as skipped instead of double-attaching.
//
// An infrastructure failure mid-loop returns the partial outcome along with
// the error; invitees committed before the failure stay committed since each
// runs in its own transaction.
func (e *Engine) AddCollaborators(ctx context.Context, deadlineID, actingUserID uint, inviteeIDs []uint, opts Options) (*Outcome, error) {
	source, err := e.deadlines.GetByID(ctx, deadlineID)
	if err != nil {
		return nil, err
	}
	if source.OwnerID != actingUserID {
		return nil, deadline.ErrNotOwner
	}

	if opts.TitleSuffix == "" {
		opts.TitleSuffix = DefaultTitleSuffix
	}

	attached := make(map[uint]bool, len(source.Collaborators))
	for _, attachment := range source.Collaborators {
		attached[attachment.UserID] = true
	}

	invitees := dedupe(inviteeIDs)
	outcome := &Outcome{Requested: len(invitees)}

	for _, inviteeID := range invitees {
		result, err := e.processInvitee(ctx, source, inviteeID, attached, opts)
		if err != nil {
			return outcome, fmt.Errorf("processing invitee %d: %w", inviteeID, err)
		}
		outcome.record(result)
	}
	return outcome, nil
}

func (e *Engine) processInvitee(ctx context.Context, source *models.Deadline, inviteeID uint, attached map[uint]bool, opts Options) (InviteeOutcome, error) {
	skip := func(reason SkipReason) InviteeOutcome {
		return InviteeOutcome{UserID: inviteeID, Reason: reason}
	}

	if inviteeID == source.OwnerID {
		return skip(ReasonOwner), nil
	}
	if attached[inviteeID] {
		return skip(ReasonAlreadyCollaborator), nil
	}

	status, err := e.relationships.StatusBetween(ctx, source.OwnerID, inviteeID)
	if err != nil {
		return InviteeOutcome{}, err
	}
	switch status {
	case models.RelationshipBlocked:
		return skip(ReasonBlocked), nil
	case models.RelationshipAccepted:
		// eligible
	default:
		return skip(ReasonNotFriends), nil
	}

	result, err := e.deadlines.Attach(ctx, deadline.AttachInput{
		Source:      source,
		UserID:      inviteeID,
		CreateCopy:  opts.CreateCopies && opts.IndividualCopies,
		TitleSuffix: opts.TitleSuffix,
	})
	if err != nil {
		return InviteeOutcome{}, err
	}
	if result.AlreadyAttached {
		// Lost the race against a concurrent invitation for the same pair.
		return skip(ReasonAlreadyCollaborator), nil
	}

	added := InviteeOutcome{UserID: inviteeID, Added: true}
	sharedID := source.ID
	if result.Copy != nil {
		added.CopyID = &result.Copy.ID
		sharedID = result.Copy.ID
	}

	if opts.NotifyCollaborators {
		intent := notify.NewIntent(models.NotificationDeadlineShared, inviteeID, source.OwnerID)
		intent.DeadlineID = sharedID
		intent.SourceDeadlineID = source.ID
		e.queue.Enqueue(intent)
	}
	return added, nil
}

// RemoveCollaborator revokes a user's collaborator role on a deadline. Only
// the owner may revoke. The collaborator's copy, if one was created, stays
// with them. Returns false when the user held no attachment.
func (e *Engine) RemoveCollaborator(ctx context.Context, deadlineID, actingUserID, collaboratorID uint) (bool, error) {
	source, err := e.deadlines.GetByID(ctx, deadlineID)
	if err != nil {
		return false, err
	}
	if source.OwnerID != actingUserID {
		return false, deadline.ErrNotOwner
	}
	return e.deadlines.Detach(ctx, deadlineID, collaboratorID)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
