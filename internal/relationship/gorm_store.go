package relationship

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dueboard/backend/internal/database"
	"dueboard/backend/internal/models"
)

const (
	retryAttempts = 2
	retryBackoff  = 100 * time.Millisecond
)

// GormStore persists the relationship graph in postgres through GORM.
//
// Mutations take a postgres advisory transaction lock keyed on the canonical
// pair before reading the edge, which serializes concurrent transitions for
// the same two users even when no row exists yet to lock.
type GormStore struct {
	db    *gorm.DB
	cache *StatusCache
}

// NewGormStore creates a store over db. cache may be nil.
func NewGormStore(db *gorm.DB, cache *StatusCache) *GormStore {
	return &GormStore{db: db, cache: cache}
}

func permanentErr(err error) bool {
	return IsConflict(err) ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Mutate implements Store.
func (s *GormStore) Mutate(ctx context.Context, userA, userB uint, fn func(Tx) error) error {
	lo, hi := NormalizePair(userA, userB)

	err := database.WithRetry(retryAttempts, retryBackoff, permanentErr, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", database.LockKey("relationship", lo, hi)).Error; err != nil {
				return err
			}
			return fn(&gormTx{tx: tx, lo: lo, hi: hi})
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, lo, hi)
	return nil
}

// StatusBetween implements Store. Reads go through the status cache when one
// is configured.
func (s *GormStore) StatusBetween(ctx context.Context, userA, userB uint) (models.RelationshipStatus, error) {
	if status, ok := s.cache.Get(ctx, userA, userB); ok {
		return status, nil
	}

	lo, hi := NormalizePair(userA, userB)
	var edge models.Relationship
	err := s.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", lo, hi).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.cache.Set(ctx, lo, hi, models.RelationshipNone)
		return models.RelationshipNone, nil
	}
	if err != nil {
		return models.RelationshipNone, err
	}

	s.cache.Set(ctx, lo, hi, edge.Status)
	return edge.Status, nil
}

// ListByStatus implements Store.
func (s *GormStore) ListByStatus(ctx context.Context, userID uint, status models.RelationshipStatus, dir Direction) ([]models.User, error) {
	query := s.db.WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?) AND status = ?", userID, userID, status)

	switch dir {
	case DirectionIncoming:
		query = query.Where("initiator_id <> ?", userID)
	case DirectionOutgoing:
		query = query.Where("initiator_id = ?", userID)
	}

	var edges []models.Relationship
	if err := query.Preload("UserA").Preload("UserB").Order("updated_at DESC").Find(&edges).Error; err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(edges))
	for _, edge := range edges {
		if edge.UserAID == userID {
			users = append(users, edge.UserB)
		} else {
			users = append(users, edge.UserA)
		}
	}
	return users, nil
}

// Stats implements Store.
func (s *GormStore) Stats(ctx context.Context, userID uint) (*Stats, error) {
	stats := &Stats{}
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Relationship{}).
			Where("user_a_id = ? OR user_b_id = ?", userID, userID)
	}

	if err := base().Where("status = ?", models.RelationshipAccepted).Count(&stats.Friends).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ? AND initiator_id <> ?", models.RelationshipPending, userID).Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ? AND initiator_id = ?", models.RelationshipPending, userID).Count(&stats.Sent).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ? AND initiator_id = ?", models.RelationshipBlocked, userID).Count(&stats.Blocked).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// gormTx implements Tx for a single canonical pair inside a transaction.
type gormTx struct {
	tx *gorm.DB
	lo uint
	hi uint
}

func (t *gormTx) Edge() (*models.Relationship, error) {
	var edge models.Relationship
	err := t.tx.Where("user_a_id = ? AND user_b_id = ?", t.lo, t.hi).First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

func (t *gormTx) Create(status models.RelationshipStatus, initiatorID uint) error {
	edge := models.Relationship{
		UserAID:     t.lo,
		UserBID:     t.hi,
		Status:      status,
		InitiatorID: initiatorID,
	}
	return t.tx.Create(&edge).Error
}

func (t *gormTx) SetStatus(status models.RelationshipStatus, initiatorID uint) error {
	return t.tx.Model(&models.Relationship{}).
		Where("user_a_id = ? AND user_b_id = ?", t.lo, t.hi).
		Updates(map[string]interface{}{"status": status, "initiator_id": initiatorID}).Error
}

func (t *gormTx) Delete() error {
	return t.tx.Where("user_a_id = ? AND user_b_id = ?", t.lo, t.hi).
		Delete(&models.Relationship{}).Error
}

func (t *gormTx) DeleteAttachmentsBetween() error {
	ownedByLo := t.tx.Model(&models.Deadline{}).Select("id").Where("owner_id = ?", t.lo)
	ownedByHi := t.tx.Model(&models.Deadline{}).Select("id").Where("owner_id = ?", t.hi)

	return t.tx.
		Where("(user_id = ? AND deadline_id IN (?)) OR (user_id = ? AND deadline_id IN (?))",
			t.lo, ownedByHi, t.hi, ownedByLo).
		Delete(&models.CollaboratorAttachment{}).Error
}
