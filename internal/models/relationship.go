package models

import "time"

// RelationshipStatus defines the state of a relationship between two users.
type RelationshipStatus string

const (
	// RelationshipNone means no relationship row exists between the pair.
	// It is never stored; it is the implicit status of an absent edge.
	RelationshipNone RelationshipStatus = "none"

	// RelationshipPending means a friend request has been sent but not yet accepted.
	RelationshipPending RelationshipStatus = "pending"

	// RelationshipAccepted means the friend request was accepted, and the users are now friends.
	RelationshipAccepted RelationshipStatus = "accepted"

	// RelationshipBlocked means one of the two users blocked the other.
	RelationshipBlocked RelationshipStatus = "blocked"
)

// Relationship represents the single edge between two users.
// Exactly one row may exist per pair; the pair is stored canonically with
// UserAID < UserBID so mirrored duplicates cannot appear. InitiatorID records
// which side performed the directional action (sent the request, placed the
// block) and is how "sent" vs "received" is recovered from the unordered pair.
type Relationship struct {
	UserAID     uint               `gorm:"primaryKey"`
	UserBID     uint               `gorm:"primaryKey"`
	Status      RelationshipStatus `gorm:"type:varchar(20);not null;index"`
	InitiatorID uint               `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	UserA User `gorm:"foreignKey:UserAID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserB User `gorm:"foreignKey:UserBID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Other returns the user on the opposite side of the edge from userID.
func (r *Relationship) Other(userID uint) uint {
	if r.UserAID == userID {
		return r.UserBID
	}
	return r.UserAID
}
