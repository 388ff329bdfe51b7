package relationship

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dueboard/backend/internal/models"
)

type pairKey struct {
	lo uint
	hi uint
}

// fakeStore keeps the relationship graph in memory. Mutations run under a
// single mutex, which stands in for the per-pair advisory lock.
type fakeStore struct {
	edges map[pairKey]*models.Relationship

	// pairs whose attachments were cleaned up, in call order
	cleanups []pairKey
}

func newFakeStore() *fakeStore {
	return &fakeStore{edges: make(map[pairKey]*models.Relationship)}
}

func key(a, b uint) pairKey {
	lo, hi := NormalizePair(a, b)
	return pairKey{lo: lo, hi: hi}
}

func (s *fakeStore) Mutate(ctx context.Context, userA, userB uint, fn func(Tx) error) error {
	return fn(&fakeTx{store: s, key: key(userA, userB)})
}

func (s *fakeStore) StatusBetween(ctx context.Context, userA, userB uint) (models.RelationshipStatus, error) {
	edge, ok := s.edges[key(userA, userB)]
	if !ok {
		return models.RelationshipNone, nil
	}
	return edge.Status, nil
}

func (s *fakeStore) ListByStatus(ctx context.Context, userID uint, status models.RelationshipStatus, dir Direction) ([]models.User, error) {
	var users []models.User
	for k, edge := range s.edges {
		if k.lo != userID && k.hi != userID {
			continue
		}
		if edge.Status != status {
			continue
		}
		switch dir {
		case DirectionIncoming:
			if edge.InitiatorID == userID {
				continue
			}
		case DirectionOutgoing:
			if edge.InitiatorID != userID {
				continue
			}
		}
		users = append(users, models.User{Model: gorm.Model{ID: edge.Other(userID)}})
	}
	return users, nil
}

func (s *fakeStore) Stats(ctx context.Context, userID uint) (*Stats, error) {
	stats := &Stats{}
	for k, edge := range s.edges {
		if k.lo != userID && k.hi != userID {
			continue
		}
		switch edge.Status {
		case models.RelationshipAccepted:
			stats.Friends++
		case models.RelationshipPending:
			if edge.InitiatorID == userID {
				stats.Sent++
			} else {
				stats.Pending++
			}
		case models.RelationshipBlocked:
			if edge.InitiatorID == userID {
				stats.Blocked++
			}
		}
	}
	return stats, nil
}

type fakeTx struct {
	store *fakeStore
	key   pairKey
}

func (t *fakeTx) Edge() (*models.Relationship, error) {
	edge, ok := t.store.edges[t.key]
	if !ok {
		return nil, nil
	}
	clone := *edge
	return &clone, nil
}

func (t *fakeTx) Create(status models.RelationshipStatus, initiatorID uint) error {
	t.store.edges[t.key] = &models.Relationship{
		UserAID:     t.key.lo,
		UserBID:     t.key.hi,
		Status:      status,
		InitiatorID: initiatorID,
	}
	return nil
}

func (t *fakeTx) SetStatus(status models.RelationshipStatus, initiatorID uint) error {
	edge := t.store.edges[t.key]
	edge.Status = status
	edge.InitiatorID = initiatorID
	return nil
}

func (t *fakeTx) Delete() error {
	delete(t.store.edges, t.key)
	return nil
}

func (t *fakeTx) DeleteAttachmentsBetween() error {
	t.store.cleanups = append(t.store.cleanups, t.key)
	return nil
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store)

	status, err := engine.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipPending, status)

	// The status is visible from both sides.
	got, err := engine.StatusBetween(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipPending, got)
	got, err = engine.StatusBetween(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipPending, got)
}

func TestSendRequestToSelf(t *testing.T) {
	engine := NewEngine(newFakeStore())

	_, err := engine.SendRequest(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrSelfRelationship)
}

func TestSendRequestDuplicate(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	_, err := engine.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	// Same direction.
	_, err = engine.SendRequest(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrAlreadyPending)

	// Opposite direction hits the same canonical edge.
	_, err = engine.SendRequest(ctx, 2, 1)
	assert.ErrorIs(t, err, ErrAlreadyPending)
}

func TestSendRequestToFriend(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	mustBefriend(t, engine, 1, 2)

	_, err := engine.SendRequest(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	_, err := engine.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	status, err := engine.Accept(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipAccepted, status)

	got, _ := engine.StatusBetween(ctx, 2, 1)
	assert.Equal(t, models.RelationshipAccepted, got)
}

func TestAcceptByInitiator(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	_, err := engine.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	// The requester cannot accept their own request.
	_, err = engine.Accept(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAcceptWithoutRequest(t *testing.T) {
	engine := NewEngine(newFakeStore())

	_, err := engine.Accept(context.Background(), 2, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecline(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	_, err := engine.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	status, err := engine.Decline(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipNone, status)

	// Declined collapses to none; the requester may resend.
	got, _ := engine.StatusBetween(ctx, 1, 2)
	assert.Equal(t, models.RelationshipNone, got)
	_, err = engine.SendRequest(ctx, 1, 2)
	assert.NoError(t, err)
}

func TestDeclineByInitiator(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	_, err := engine.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	_, err = engine.Decline(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRemoveFriend(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store)

	mustBefriend(t, engine, 1, 2)

	status, err := engine.Remove(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipNone, status)

	// Removing a friendship cleans up the pair's attachments in the same
	// transaction.
	assert.Equal(t, []pairKey{{lo: 1, hi: 2}}, store.cleanups)
}

func TestRemoveCancelsPendingWithoutCleanup(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store)

	_, err := engine.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	_, err = engine.Remove(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, store.cleanups)

	got, _ := engine.StatusBetween(ctx, 1, 2)
	assert.Equal(t, models.RelationshipNone, got)
}

func TestRemoveNonexistent(t *testing.T) {
	engine := NewEngine(newFakeStore())

	_, err := engine.Remove(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlockFriend(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store)

	mustBefriend(t, engine, 1, 2)

	status, err := engine.Block(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipBlocked, status)
	assert.Equal(t, []pairKey{{lo: 1, hi: 2}}, store.cleanups)

	// Neither side can send a request over the block.
	_, err = engine.SendRequest(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = engine.SendRequest(ctx, 2, 1)
	assert.ErrorIs(t, err, ErrBlocked)

	// Nor accept anything.
	_, err = engine.Accept(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestBlockStranger(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store)

	status, err := engine.Block(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipBlocked, status)

	// No friendship existed, so there is nothing to clean up.
	assert.Empty(t, store.cleanups)
}

func TestBlockOverwritesPending(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	_, err := engine.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	_, err = engine.Block(ctx, 2, 1)
	require.NoError(t, err)

	got, _ := engine.StatusBetween(ctx, 1, 2)
	assert.Equal(t, models.RelationshipBlocked, got)
}

func TestBlockIdempotentForBlocker(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	_, err := engine.Block(ctx, 1, 2)
	require.NoError(t, err)

	_, err = engine.Block(ctx, 1, 2)
	assert.NoError(t, err)

	// The blocked side cannot stack their own block on top.
	_, err = engine.Block(ctx, 2, 1)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestUnblock(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	_, err := engine.Block(ctx, 1, 2)
	require.NoError(t, err)

	// The blockee cannot unblock themselves.
	_, err = engine.Unblock(ctx, 2, 1)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	status, err := engine.Unblock(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipNone, status)

	// Back to a clean slate: requests work again.
	_, err = engine.SendRequest(ctx, 2, 1)
	assert.NoError(t, err)
}

func TestUnblockNonexistent(t *testing.T) {
	engine := NewEngine(newFakeStore())

	_, err := engine.Unblock(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusSymmetryAfterTransitions(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	steps := []func() (models.RelationshipStatus, error){
		func() (models.RelationshipStatus, error) { return engine.SendRequest(ctx, 1, 2) },
		func() (models.RelationshipStatus, error) { return engine.Accept(ctx, 2, 1) },
		func() (models.RelationshipStatus, error) { return engine.Block(ctx, 1, 2) },
		func() (models.RelationshipStatus, error) { return engine.Unblock(ctx, 1, 2) },
	}
	for _, step := range steps {
		_, err := step()
		require.NoError(t, err)

		ab, err := engine.StatusBetween(ctx, 1, 2)
		require.NoError(t, err)
		ba, err := engine.StatusBetween(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	mustBefriend(t, engine, 1, 2)
	_, err := engine.SendRequest(ctx, 1, 3)
	require.NoError(t, err)
	_, err = engine.SendRequest(ctx, 4, 1)
	require.NoError(t, err)
	_, err = engine.Block(ctx, 1, 5)
	require.NoError(t, err)

	stats, err := engine.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Friends)
	assert.Equal(t, int64(1), stats.Sent)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Blocked)
}

func mustBefriend(t *testing.T, engine *Engine, a, b uint) {
	t.Helper()
	_, err := engine.SendRequest(context.Background(), a, b)
	require.NoError(t, err)
	_, err = engine.Accept(context.Background(), b, a)
	require.NoError(t, err)
}
