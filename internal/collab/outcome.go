package collab

// SkipReason is the closed set of reasons an invitee can be skipped.
// Presentation (localized messages) is the caller's concern.
type SkipReason string

const (
	// ReasonOwner: the invitee is the deadline's owner.
	ReasonOwner SkipReason = "owner"
	// ReasonAlreadyCollaborator: the invitee already holds an attachment.
	ReasonAlreadyCollaborator SkipReason = "already_collaborator"
	// ReasonNotFriends: the pair has no accepted friendship.
	ReasonNotFriends SkipReason = "not_friends"
	// ReasonBlocked: the pair is blocked in either direction.
	ReasonBlocked SkipReason = "blocked"
)

// InviteeOutcome reports what happened to a single invitee.
type InviteeOutcome struct {
	UserID uint       `json:"user_id"`
	Added  bool       `json:"added"`
	Reason SkipReason `json:"reason,omitempty"`
	CopyID *uint      `json:"copy_id,omitempty"`
}

// Outcome aggregates a whole AddCollaborators call. Skipped invitees are
// always reported, even when others were added: partial success is data, not
// an error. Success means at least one invitee was added.
type Outcome struct {
	Results   []InviteeOutcome `json:"results"`
	Requested int              `json:"requested_count"`
	Added     int              `json:"added_count"`
	Skipped   int              `json:"skipped_count"`
	Success   bool             `json:"success"`
}

func (o *Outcome) record(result InviteeOutcome) {
	o.Results = append(o.Results, result)
	if result.Added {
		o.Added++
	} else {
		o.Skipped++
	}
	o.Success = o.Added > 0
}
