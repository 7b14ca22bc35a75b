package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscountCode is a promotional code. A code is valid only while Active and,
// when ExpiresAt is set, before that instant.
type DiscountCode struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code       string     `gorm:"uniqueIndex;not null" json:"code"`
	Percentage float64    `gorm:"not null;check:percentage >= 0 AND percentage <= 100" json:"percentage"`
	Active     bool       `gorm:"default:true" json:"active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// IsValid reports whether the code can be applied at the given instant.
func (d *DiscountCode) IsValid(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.ExpiresAt != nil && !d.ExpiresAt.After(now) {
		return false
	}
	return true
}
