package repositories

import (
	"time"

	"catalog/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
}

// TokenRepository tracks revoked JWT ids so logout takes effect before the
// token's natural expiry.
type TokenRepository interface {
	Revoke(token *models.RevokedToken) error
	IsRevoked(jti string) (bool, error)
	PurgeExpired(now time.Time) error
}
