package deadline

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

// GormStore persists deadlines and attachments in postgres through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func permanentErr(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Create implements Store.
func (s *GormStore) Create(ctx context.Context, d *models.Deadline) error {
	return s.db.WithContext(ctx).Create(d).Error
}

// GetByID implements Store. Collaborator attachments and their users are
// preloaded so handlers and the collaboration engine see the current set.
func (s *GormStore) GetByID(ctx context.Context, id uint) (*models.Deadline, error) {
	var d models.Deadline
	err := s.db.WithContext(ctx).
		Preload("Collaborators").
		Preload("Collaborators.User").
		First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List implements Store. A user sees deadlines they own plus deadlines they
// are attached to as a collaborator.
func (s *GormStore) List(ctx context.Context, userID uint, filter ListFilter) ([]models.Deadline, int64, error) {
	attached := s.db.Model(&models.CollaboratorAttachment{}).
		Select("deadline_id").Where("user_id = ?", userID)

	query := s.db.WithContext(ctx).Model(&models.Deadline{}).
		Where("owner_id = ? OR id IN (?)", userID, attached)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var deadlines []models.Deadline
	err := query.
		Preload("Collaborators").
		Order("due_date ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&deadlines).Error
	if err != nil {
		return nil, 0, err
	}
	return deadlines, total, nil
}

// Save implements Store.
func (s *GormStore) Save(ctx context.Context, d *models.Deadline) error {
	return s.db.WithContext(ctx).Save(d).Error
}

// Delete implements Store. Attachments go with the deadline so collaborators
// stop seeing it; copies are independent rows and stay.
func (s *GormStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deadline_id = ?", id).Delete(&models.CollaboratorAttachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Deadline{}, id).Error
	})
}

// Upcoming implements Store.
func (s *GormStore) Upcoming(ctx context.Context, userID uint, within time.Duration) ([]models.Deadline, error) {
	now := time.Now()
	var deadlines []models.Deadline
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND due_date BETWEEN ? AND ? AND status NOT IN (?, ?)",
			userID, now, now.Add(within), models.DeadlineCompleted, models.DeadlineCancelled).
		Order("due_date ASC").
		Find(&deadlines).Error
	return deadlines, err
}

// Overdue implements Store.
func (s *GormStore) Overdue(ctx context.Context, userID uint) ([]models.Deadline, error) {
	var deadlines []models.Deadline
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND due_date < ? AND status NOT IN (?, ?)",
			userID, time.Now(), models.DeadlineCompleted, models.DeadlineCancelled).
		Order("due_date ASC").
		Find(&deadlines).Error
	return deadlines, err
}

// Stats implements Store.
func (s *GormStore) Stats(ctx context.Context, userID uint) (*Stats, error) {
	stats := &Stats{}
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Deadline{}).Where("owner_id = ?", userID)
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	counts := []struct {
		status models.DeadlineStatus
		dest   *int64
	}{
		{models.DeadlinePending, &stats.Pending},
		{models.DeadlineInProgress, &stats.InProgress},
		{models.DeadlineCompleted, &stats.Completed},
	}
	for _, c := range counts {
		if err := base().Where("status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	err := base().Where("due_date < ? AND status NOT IN (?, ?)",
		time.Now(), models.DeadlineCompleted, models.DeadlineCancelled).
		Count(&stats.Overdue).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Attach implements Store. The advisory lock on the (deadline, user) key makes
// the existence check and the inserts atomic against a concurrent duplicate
// invitation for the same pair.
func (s *GormStore) Attach(ctx context.Context, input AttachInput) (*AttachResult, error) {
	result := &AttachResult{}

	err := database.WithRetry(retryAttempts, retryBackoff, permanentErr, func() error {
		result = &AttachResult{}
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			key := database.LockKey("attachment", input.Source.ID, input.UserID)
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
				return err
			}

			var existing models.CollaboratorAttachment
			err := tx.Where("deadline_id = ? AND user_id = ?", input.Source.ID, input.UserID).
				First(&existing).Error
			if err == nil {
				result.AlreadyAttached = true
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			attachment := models.CollaboratorAttachment{
				DeadlineID: input.Source.ID,
				UserID:     input.UserID,
				Role:       models.RoleCollaborator,
			}
			if err := tx.Create(&attachment).Error; err != nil {
				return err
			}

			if input.CreateCopy {
				dup := copyOf(input.Source, input.UserID, input.TitleSuffix)
				if err := tx.Create(dup).Error; err != nil {
					return err
				}
				result.Copy = dup
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Detach implements Store. Returns false when no attachment existed.
func (s *GormStore) Detach(ctx context.Context, deadlineID, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("deadline_id = ? AND user_id = ?", deadlineID, userID).
		Delete(&models.CollaboratorAttachment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// copyOf builds the invitee's independent copy of source. Progress never
// carries over: each collaborator tracks their own.
func copyOf(source *models.Deadline, ownerID uint, titleSuffix string) *models.Deadline {
	origin := source.ID
	return &models.Deadline{
		OwnerID:              ownerID,
		Title:                source.Title + titleSuffix,
		Description:          source.Description,
		Subject:              source.Subject,
		Category:             source.Category,
		Priority:             source.Priority,
		Status:               models.DeadlinePending,
		DueDate:              source.DueDate,
		EstimatedHours:       source.EstimatedHours,
		ActualHours:          0,
		CompletionPercentage: 0,
		Notes:                source.Notes,
		OriginDeadlineID:     &origin,
	}
}
