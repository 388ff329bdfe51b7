package models

import (
	"time"

	"gorm.io/gorm"
)

// DeadlinePriority defines how urgent a deadline is.
type DeadlinePriority string

const (
	PriorityLow      DeadlinePriority = "low"
	PriorityMedium   DeadlinePriority = "medium"
	PriorityHigh     DeadlinePriority = "high"
	PriorityCritical DeadlinePriority = "critical"
)

// DeadlineStatus defines the lifecycle state of a deadline.
type DeadlineStatus string

const (
	DeadlinePending    DeadlineStatus = "pending"
	DeadlineInProgress DeadlineStatus = "in_progress"
	DeadlineCompleted  DeadlineStatus = "completed"
	DeadlineOverdue    DeadlineStatus = "overdue"
	DeadlineCancelled  DeadlineStatus = "cancelled"
)

// Deadline represents a tracked deadline owned by a single user.
//
// OriginDeadlineID is set only on deadlines that were materialized as
// collaboration copies and points at the deadline they were copied from.
// Copies are autonomous once created: they carry their own status and
// progress, and are never re-copied transitively.
type Deadline struct {
	gorm.Model
	OwnerID              uint             `gorm:"not null;index"`
	Title                string           `gorm:"size:255;not null"`
	Description          string
	Subject              string           `gorm:"size:100"`
	Category             string           `gorm:"size:100"`
	Priority             DeadlinePriority `gorm:"type:varchar(20);not null;default:'medium'"`
	Status               DeadlineStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	DueDate              time.Time        `gorm:"not null;index"`
	EstimatedHours       float64
	ActualHours          float64
	CompletionPercentage int `gorm:"not null;default:0"`
	Notes                string
	OriginDeadlineID     *uint `gorm:"index"`

	Owner         User                     `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Collaborators []CollaboratorAttachment `gorm:"foreignKey:DeadlineID"`
}

// RoleCollaborator is the only role stored on an attachment. The owner role
// is implied by Deadline.OwnerID and never materialized as an attachment.
const RoleCollaborator = "collaborator"

// CollaboratorAttachment grants a user the collaborator role on a deadline.
// The composite primary key makes double-attachment impossible.
type CollaboratorAttachment struct {
	DeadlineID uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"primaryKey"`
	Role       string `gorm:"type:varchar(20);not null;default:'collaborator'"`
	CreatedAt  time.Time

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
