package models

import "gorm.io/gorm"

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	NotificationDeadlineShared NotificationType = "deadline_shared"
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
)

// Notification is a persisted, per-user notification produced by the intent
// queue. Delivery transport (email, push) is out of scope; rows are only
// listed and marked read through the API.
type Notification struct {
	gorm.Model
	UserID     uint             `gorm:"not null;index"`
	Type       NotificationType `gorm:"type:varchar(40);not null"`
	Message    string           `gorm:"not null"`
	ActorID    *uint
	DeadlineID *uint
	Read       bool `gorm:"not null;default:false;index"`
}
