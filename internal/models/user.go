package models

import "time"

// User represents an account that can authenticate against the catalog.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:100" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255" validate:"required,email"`
	Password  string    `json:"-" gorm:"size:255" validate:"required,min=6"`
	Role      string    `json:"role" gorm:"size:16;default:user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RevokedToken records a JWT id that has been logged out before its natural
// expiry. Rows past ExpiresAt are garbage and get purged periodically.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"index"`
	RevokedAt time.Time
}
