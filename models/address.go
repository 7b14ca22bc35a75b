package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a delivery address owned by a user. At most one address per user
// has IsDefault set; setting a new default clears the others first.
type Address struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	Street    string    `gorm:"not null" json:"street"`
	City      string    `gorm:"not null" json:"city"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
