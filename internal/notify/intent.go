package notify

import (
	"time"

	"github.com/google/uuid"

	"dueboard/backend/internal/models"
)

// Intent is a queued request to notify a user, decoupled from delivery.
// Producers enqueue intents and move on; the queue persists them as
// notification rows in the background.
type Intent struct {
	ID               string
	Type             models.NotificationType
	UserID           uint
	ActorID          uint
	DeadlineID       uint
	SourceDeadlineID uint
	CreatedAt        time.Time
}

// NewIntent builds an intent of the given type addressed to userID.
func NewIntent(intentType models.NotificationType, userID, actorID uint) Intent {
	return Intent{
		ID:        uuid.NewString(),
		Type:      intentType,
		UserID:    userID,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}
}

// Enqueuer accepts notification intents. Enqueue must never block and never
// reports failure to the producer: a notification is best-effort and must not
// roll back the work that triggered it.
type Enqueuer interface {
	Enqueue(intent Intent)
}
