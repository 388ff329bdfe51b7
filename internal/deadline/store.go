package deadline

import (
	"context"
	"time"

	"dueboard/backend/internal/models"
)

// ListFilter narrows and pages a deadline listing.
type ListFilter struct {
	Status   models.DeadlineStatus
	Priority models.DeadlinePriority
	Page     int
	Limit    int
}

// Stats summarizes a user's deadlines for the dashboard.
type Stats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
}

// AttachInput describes a single collaborator attachment, optionally with a
// materialized copy for the invitee.
type AttachInput struct {
	Source      *models.Deadline
	UserID      uint
	CreateCopy  bool
	TitleSuffix string
}

// AttachResult reports what Attach did. AlreadyAttached means the user held
// an attachment before the call and nothing was written.
type AttachResult struct {
	AlreadyAttached bool
	Copy            *models.Deadline
}

// Store persists deadlines and their collaborator attachments.
//
// Attach must be atomic per (deadline, user): the existence check, the
// attachment insert, and the optional copy insert run under one lock so a
// concurrent duplicate invitation cannot double-attach or double-copy.
type Store interface {
	Create(ctx context.Context, d *models.Deadline) error
	GetByID(ctx context.Context, id uint) (*models.Deadline, error)
	List(ctx context.Context, userID uint, filter ListFilter) ([]models.Deadline, int64, error)
	Save(ctx context.Context, d *models.Deadline) error
	Delete(ctx context.Context, id uint) error
	Upcoming(ctx context.Context, userID uint, within time.Duration) ([]models.Deadline, error)
	Overdue(ctx context.Context, userID uint) ([]models.Deadline, error)
	Stats(ctx context.Context, userID uint) (*Stats, error)

	Attach(ctx context.Context, input AttachInput) (*AttachResult, error)
	Detach(ctx context.Context, deadlineID, userID uint) (bool, error)
}
