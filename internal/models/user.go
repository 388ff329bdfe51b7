package models

import "gorm.io/gorm"

// User represents a user in the system.
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	FullName     string `gorm:"size:255"`
	PasswordHash string `gorm:"size:255;not null"`
}
