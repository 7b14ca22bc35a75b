package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cake is a catalog item. Price is the unit sale price, Cost the unit cost
// basis; Stock never goes negative.
type Cake struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"not null;index" json:"name"`
	Description string         `json:"description,omitempty"`
	Price       float64        `gorm:"not null" json:"price"`
	Cost        float64        `gorm:"not null" json:"cost"`
	Stock       int            `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	ImageURL    string         `json:"image_url,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
