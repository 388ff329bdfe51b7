package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"dueboard/backend/internal/models"
)

// Queue is a channel-backed intent queue. Producers enqueue with a
// non-blocking send; a single background goroutine drains the channel and
// persists each intent as a notification row. A full buffer drops the intent
// rather than blocking a producer whose transaction already committed.
type Queue struct {
	intents chan Intent
	store   Store

	stopOnce sync.Once
	done     chan struct{}
	drained  chan struct{}
}

// NewQueue creates a queue writing to store with the given buffer size.
func NewQueue(store Store, buffer int) *Queue {
	if buffer < 1 {
		buffer = 64
	}
	return &Queue{
		intents: make(chan Intent, buffer),
		store:   store,
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
}

// Start launches the dispatcher goroutine.
func (q *Queue) Start() {
	go q.run()
}

// Stop shuts the dispatcher down after draining buffered intents.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.done)
	})
	<-q.drained
}

// Enqueue implements Enqueuer.
func (q *Queue) Enqueue(intent Intent) {
	select {
	case q.intents <- intent:
	default:
		log.Printf("notify: queue full, dropping %s intent for user %d", intent.Type, intent.UserID)
	}
}

func (q *Queue) run() {
	defer close(q.drained)
	for {
		select {
		case intent := <-q.intents:
			q.dispatch(intent)
		case <-q.done:
			// Drain whatever is buffered before exiting.
			for {
				select {
				case intent := <-q.intents:
					q.dispatch(intent)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) dispatch(intent Intent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	notification := materialize(intent)
	if err := q.store.Insert(ctx, notification); err != nil {
		log.Printf("notify: failed to persist %s intent %s: %v", intent.Type, intent.ID, err)
	}
}

// materialize turns an intent into its persisted notification row.
func materialize(intent Intent) *models.Notification {
	n := &models.Notification{
		UserID:  intent.UserID,
		Type:    intent.Type,
		Message: messageFor(intent.Type),
	}
	if intent.ActorID != 0 {
		actorID := intent.ActorID
		n.ActorID = &actorID
	}
	if intent.DeadlineID != 0 {
		deadlineID := intent.DeadlineID
		n.DeadlineID = &deadlineID
	}
	return n
}

func messageFor(intentType models.NotificationType) string {
	switch intentType {
	case models.NotificationDeadlineShared:
		return "A deadline was shared with you"
	case models.NotificationFriendRequest:
		return "You received a friend request"
	case models.NotificationFriendAccepted:
		return "Your friend request was accepted"
	default:
		return "You have a new notification"
	}
}
