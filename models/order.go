package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses. Delivered and cancelled are terminal.
const (
	OrderStatusDraft     = "draft"
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusDraft, OrderStatusPending, OrderStatusConfirmed,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// TerminalOrderStatus reports whether s admits no further transitions.
func TerminalOrderStatus(s string) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type Order struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	AddressID      *uuid.UUID     `gorm:"type:uuid" json:"address_id,omitempty"`
	TotalPrice     float64        `gorm:"not null" json:"total_price"`
	TotalRevenue   float64        `gorm:"not null" json:"total_revenue"`
	PaymentMethod  string         `gorm:"type:varchar(30);not null" json:"payment_method"`
	ShippingMethod string         `gorm:"type:varchar(30)" json:"shipping_method,omitempty"`
	Status         string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DeliveryDate   *time.Time     `json:"delivery_date,omitempty"`
	DiscountCode   string         `gorm:"type:varchar(50)" json:"discount_code,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Items          []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is a line-item snapshot. Name and UnitPrice are copied from the
// cake at order creation; later catalog changes never alter them.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	CakeID    uuid.UUID `gorm:"type:uuid;not null" json:"cake_id"`
	Name      string    `gorm:"not null" json:"name"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

// Migrate runs auto migration for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&DeviceToken{},
		&Cake{},
		&Address{},
		&DiscountCode{},
		&Order{},
		&OrderItem{},
	)
}
