package models

import "time"

// Request payloads bound by the HTTP layer. Validation tags are enforced by
// gin's binding (go-playground/validator).

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type CreateCakeRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=200"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Cost        float64 `json:"cost" binding:"required,gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	ImageURL    string  `json:"image_url" binding:"omitempty,url"`
}

type UpdateCakeRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=2,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Cost        *float64 `json:"cost" binding:"omitempty,gte=0"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url" binding:"omitempty,url"`
}

type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

type AddCartItemRequest struct {
	CakeID   string `json:"cake_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type OrderItemRequest struct {
	CakeID   string `json:"cake_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type PlaceOrderRequest struct {
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod  string             `json:"payment_method" binding:"required"`
	AddressID      string             `json:"address_id" binding:"omitempty,uuid"`
	DeliveryDate   *time.Time         `json:"delivery_date" binding:"omitempty,future"`
	ShippingMethod string             `json:"shipping_method" binding:"omitempty,oneof=pickup delivery"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ApplyDiscountRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
	Code    string `json:"code" binding:"required"`
}

type CreateDiscountRequest struct {
	Code       string     `json:"code" binding:"required,min=2,max=50"`
	Percentage float64    `json:"percentage" binding:"required,gt=0,lte=100"`
	ExpiresAt  *time.Time `json:"expires_at" binding:"omitempty,future"`
}

type CreateAddressRequest struct {
	FullName  string `json:"full_name" binding:"required,min=2,max=100"`
	Phone     string `json:"phone" binding:"required,max=20"`
	Street    string `json:"street" binding:"required,max=200"`
	City      string `json:"city" binding:"required,max=100"`
	IsDefault bool   `json:"is_default"`
}

type UpdateAddressRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Street   *string `json:"street" binding:"omitempty,max=200"`
	City     *string `json:"city" binding:"omitempty,max=100"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"omitempty,oneof=ios android web"`
}

type BroadcastRequest struct {
	Title string `json:"title" binding:"required,max=100"`
	Body  string `json:"body" binding:"required,max=500"`
}
