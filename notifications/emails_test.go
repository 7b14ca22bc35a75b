package notifications_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/notifications"
)

func TestBuildVerificationEmailHTML(t *testing.T) {
	html := notifications.BuildVerificationEmailHTML("Dana", "482913")

	assert.Contains(t, html, "Dana")
	assert.Contains(t, html, "482913")
}

func TestBuildOrderConfirmationHTML(t *testing.T) {
	order := &models.Order{
		ID:           uuid.New(),
		TotalPrice:   34,
		DiscountCode: "SAVE15",
		Status:       models.OrderStatusPending,
		Items: []models.OrderItem{
			{Name: "Chocolate Cake", UnitPrice: 10, Quantity: 2},
			{Name: "Cheesecake", UnitPrice: 20, Quantity: 1},
		},
	}

	html := notifications.BuildOrderConfirmationHTML("Dana", order)

	assert.Contains(t, html, "Chocolate Cake")
	assert.Contains(t, html, "Cheesecake")
	assert.Contains(t, html, "34.00")
	assert.Contains(t, html, "SAVE15")
}

func TestBuildStatusChangeHTML(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: models.OrderStatusDelivered}

	html := notifications.BuildStatusChangeHTML("Dana", order)

	assert.Contains(t, html, "Dana")
	assert.Contains(t, html, "delivered")
}
