package models

import (
	"time"

	"github.com/google/uuid"
)

// User model
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email            string    `gorm:"unique;not null" json:"email"`
	Password         string    `gorm:"not null" json:"-"`
	Name             string    `gorm:"not null" json:"name"`
	Phone            string    `gorm:"size:20" json:"phone,omitempty"`
	EmailVerified    bool      `gorm:"default:false" json:"email_verified"`
	VerificationCode string    `gorm:"size:6" json:"-"`
	Role             string    `gorm:"type:varchar(50);default:'user'" json:"role"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RefreshToken stores issued refresh tokens for rotation and revocation
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TokenID   string    `gorm:"unique;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Revoked   bool      `gorm:"default:false"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// DeviceToken registers a push-notification token for a user's device
type DeviceToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	Platform  string    `gorm:"type:varchar(20)" json:"platform,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
