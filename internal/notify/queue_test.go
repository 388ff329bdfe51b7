package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueboard/backend/internal/models"
)

// recordingStore collects inserted notifications behind a mutex, since the
// dispatcher goroutine writes concurrently with test assertions.
type recordingStore struct {
	mu       sync.Mutex
	inserted []models.Notification
}

func (s *recordingStore) Insert(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, *n)
	return nil
}

func (s *recordingStore) List(ctx context.Context, userID uint, unreadOnly bool, page, limit int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (s *recordingStore) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return 0, nil
}

func (s *recordingStore) MarkRead(ctx context.Context, userID, id uint) error { return nil }
func (s *recordingStore) MarkAllRead(ctx context.Context, userID uint) error { return nil }
func (s *recordingStore) Delete(ctx context.Context, userID, id uint) error { return nil }

func (s *recordingStore) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.inserted))
	copy(out, s.inserted)
	return out
}

func TestQueuePersistsIntents(t *testing.T) {
	store := &recordingStore{}
	queue := NewQueue(store, 16)
	queue.Start()

	intent := NewIntent(models.NotificationDeadlineShared, 2, 1)
	intent.DeadlineID = 42
	queue.Enqueue(intent)
	queue.Enqueue(NewIntent(models.NotificationFriendRequest, 3, 1))

	// Stop drains the buffer before returning.
	queue.Stop()

	inserted := store.all()
	require.Len(t, inserted, 2)

	shared := inserted[0]
	assert.Equal(t, models.NotificationDeadlineShared, shared.Type)
	assert.Equal(t, uint(2), shared.UserID)
	assert.Equal(t, "A deadline was shared with you", shared.Message)
	require.NotNil(t, shared.ActorID)
	assert.Equal(t, uint(1), *shared.ActorID)
	require.NotNil(t, shared.DeadlineID)
	assert.Equal(t, uint(42), *shared.DeadlineID)

	request := inserted[1]
	assert.Equal(t, models.NotificationFriendRequest, request.Type)
	assert.Nil(t, request.DeadlineID)
}

func TestQueueFullDropsWithoutBlocking(t *testing.T) {
	store := &recordingStore{}
	queue := NewQueue(store, 1)
	// Dispatcher intentionally not started: the buffer fills and stays full.

	queue.Enqueue(NewIntent(models.NotificationFriendRequest, 2, 1))

	done := make(chan struct{})
	go func() {
		// This must return immediately even though the buffer is full.
		queue.Enqueue(NewIntent(models.NotificationFriendRequest, 3, 1))
		close(done)
	}()
	<-done

	queue.Start()
	queue.Stop()

	// Only the buffered intent survived.
	inserted := store.all()
	require.Len(t, inserted, 1)
	assert.Equal(t, uint(2), inserted[0].UserID)
}

func TestQueueStopIsIdempotent(t *testing.T) {
	queue := NewQueue(&recordingStore{}, 4)
	queue.Start()
	queue.Stop()
	queue.Stop()
}

func TestMaterializeMessages(t *testing.T) {
	cases := []struct {
		intentType models.NotificationType
		message    string
	}{
		{models.NotificationDeadlineShared, "A deadline was shared with you"},
		{models.NotificationFriendRequest, "You received a friend request"},
		{models.NotificationFriendAccepted, "Your friend request was accepted"},
		{"unknown", "You have a new notification"},
	}
	for _, tc := range cases {
		n := materialize(NewIntent(tc.intentType, 1, 0))
		assert.Equal(t, tc.message, n.Message)
		assert.Nil(t, n.ActorID)
	}
}
