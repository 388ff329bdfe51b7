package deadline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dueboard/backend/internal/models"
)

// CreateInput carries the writable deadline fields.
type CreateInput struct {
	Title                string
	Description          string
	Subject              string
	Category             string
	Priority             models.DeadlinePriority
	Status               models.DeadlineStatus
	DueDate              time.Time
	EstimatedHours       float64
	ActualHours          float64
	CompletionPercentage int
	Notes                string
}

// Service owns deadline CRUD on top of a Store. Collaboration fan-out lives
// in the collab package; this service only covers the owner-facing lifecycle.
type Service struct {
	store Store
}

// NewService creates a deadline service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates input and persists a new deadline owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID uint, input CreateInput) (*models.Deadline, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	d := &models.Deadline{
		OwnerID:              ownerID,
		Title:                strings.TrimSpace(input.Title),
		Description:          input.Description,
		Subject:              input.Subject,
		Category:             input.Category,
		Priority:             input.Priority,
		Status:               input.Status,
		DueDate:              input.DueDate,
		EstimatedHours:       input.EstimatedHours,
		ActualHours:          input.ActualHours,
		CompletionPercentage: input.CompletionPercentage,
		Notes:                input.Notes,
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Get returns a deadline visible to userID: the owner or an attached
// collaborator.
func (s *Service) Get(ctx context.Context, userID, id uint) (*models.Deadline, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(d, userID) {
		return nil, ErrNotFound
	}
	return d, nil
}

// List returns the user's deadlines (owned or collaborating) with the filter
// applied.
func (s *Service) List(ctx context.Context, userID uint, filter ListFilter) ([]models.Deadline, int64, error) {
	return s.store.List(ctx, userID, filter)
}

// Update replaces the writable fields of a deadline. Owner only.
func (s *Service) Update(ctx context.Context, userID, id uint, input CreateInput) (*models.Deadline, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != userID {
		return nil, ErrNotOwner
	}

	d.Title = strings.TrimSpace(input.Title)
	d.Description = input.Description
	d.Subject = input.Subject
	d.Category = input.Category
	d.Priority = input.Priority
	d.Status = input.Status
	d.DueDate = input.DueDate
	d.EstimatedHours = input.EstimatedHours
	d.ActualHours = input.ActualHours
	d.CompletionPercentage = input.CompletionPercentage
	d.Notes = input.Notes

	if err := s.store.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateStatus changes only the lifecycle status. Owner only. Completing a
// deadline also snaps its completion percentage to 100.
func (s *Service) UpdateStatus(ctx context.Context, userID, id uint, status models.DeadlineStatus) (*models.Deadline, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != userID {
		return nil, ErrNotOwner
	}

	d.Status = status
	if status == models.DeadlineCompleted {
		d.CompletionPercentage = 100
	}
	if err := s.store.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a deadline and its attachments. Owner only.
func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.OwnerID != userID {
		return ErrNotOwner
	}
	return s.store.Delete(ctx, id)
}

// Upcoming returns the user's deadlines due within the next `days` days.
func (s *Service) Upcoming(ctx context.Context, userID uint, days int) ([]models.Deadline, error) {
	if days < 1 {
		days = 7
	}
	return s.store.Upcoming(ctx, userID, time.Duration(days)*24*time.Hour)
}

// Overdue returns the user's past-due, unfinished deadlines.
func (s *Service) Overdue(ctx context.Context, userID uint) ([]models.Deadline, error) {
	return s.store.Overdue(ctx, userID)
}

// Stats returns the user's deadline counts.
func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	return s.store.Stats(ctx, userID)
}

func visibleTo(d *models.Deadline, userID uint) bool {
	if d.OwnerID == userID {
		return true
	}
	for _, attachment := range d.Collaborators {
		if attachment.UserID == userID {
			return true
		}
	}
	return false
}

func validate(input *CreateInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.DueDate.IsZero() {
		return fmt.Errorf("%w: due_date is required", ErrInvalidInput)
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if input.Status == "" {
		input.Status = models.DeadlinePending
	}
	if !validPriority(input.Priority) {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, input.Priority)
	}
	if !validStatus(input.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}
	if input.CompletionPercentage < 0 || input.CompletionPercentage > 100 {
		return fmt.Errorf("%w: completion_percentage must be between 0 and 100", ErrInvalidInput)
	}
	if input.EstimatedHours < 0 || input.ActualHours < 0 {
		return fmt.Errorf("%w: hours cannot be negative", ErrInvalidInput)
	}
	return nil
}

func validPriority(p models.DeadlinePriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return true
	}
	return false
}

func validStatus(s models.DeadlineStatus) bool {
	switch s {
	case models.DeadlinePending, models.DeadlineInProgress, models.DeadlineCompleted,
		models.DeadlineOverdue, models.DeadlineCancelled:
		return true
	}
	return false
}
