package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	awspkg "github.com/barmor12/cakeshop-backend/pkg/aws"
	"github.com/barmor12/cakeshop-backend/repository"
	"github.com/barmor12/cakeshop-backend/sender"
)

// Dispatcher consumes notification events from the queue and performs the
// actual delivery. Events carry only entity IDs; the dispatcher resolves the
// order and user at delivery time so stale data is never sent.
type Dispatcher struct {
	orders       repository.OrderRepository
	users        repository.UserRepository
	deviceTokens repository.DeviceTokenRepository
	email        sender.EmailSender
	push         awspkg.SNSPublisher
	pushTopicARN string
	metrics      *awspkg.MetricsClient
	logger       *zap.Logger
}

func NewDispatcher(
	orders repository.OrderRepository,
	users repository.UserRepository,
	deviceTokens repository.DeviceTokenRepository,
	email sender.EmailSender,
	push awspkg.SNSPublisher,
	pushTopicARN string,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		orders:       orders,
		users:        users,
		deviceTokens: deviceTokens,
		email:        email,
		push:         push,
		pushTopicARN: pushTopicARN,
		metrics:      metrics,
		logger:       logger,
	}
}

// HandleMessage processes one queued event. Returning an error leaves the
// message on the queue for redelivery.
func (d *Dispatcher) HandleMessage(ctx context.Context, body string) error {
	var event EventPayload
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		// Malformed messages will never parse; log and drop instead of
		// redelivering forever.
		d.logger.Error("Dropping malformed notification event", zap.Error(err))
		return nil
	}

	d.logger.Info("Processing notification event",
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.OrderID))

	switch event.EventType {
	case EventOrderPlaced:
		return d.handleOrderPlaced(ctx, event)
	case EventOrderStatusChanged:
		return d.handleStatusChanged(ctx, event)
	case EventAdminBroadcast:
		return d.handleBroadcast(ctx, event)
	default:
		d.logger.Warn("Dropping unknown notification event type",
			zap.String("event_type", event.EventType))
		return nil
	}
}

func (d *Dispatcher) handleOrderPlaced(ctx context.Context, event EventPayload) error {
	order, user, err := d.resolve(ctx, event)
	if err != nil || order == nil {
		return err
	}

	var receipt []byte
	if receiptRequired(order.PaymentMethod) {
		receipt, err = GenerateReceiptPDF(order, user.Name)
		if err != nil {
			// Still send the confirmation; the receipt is an extra.
			d.logger.Error("Failed to generate receipt PDF",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	html := BuildOrderConfirmationHTML(user.Name, order)
	subject := "Your CakeShop order is confirmed"

	var attachments []sender.Attachment
	if receipt != nil {
		attachments = append(attachments, sender.Attachment{
			Filename:    fmt.Sprintf("receipt-%s.pdf", order.ID),
			ContentType: "application/pdf",
			Content:     receipt,
		})
	}

	if _, err := d.email.SendEmail(ctx, user.Email, subject, html, attachments...); err != nil {
		d.metrics.RecordCount(ctx, awspkg.MetricEmailsFailed, nil)
		return fmt.Errorf("failed to send order confirmation to %s: %w", user.Email, err)
	}
	d.metrics.RecordCount(ctx, awspkg.MetricEmailsSent, nil)

	// Notify admin devices about the new order, best effort.
	d.pushToRole(ctx, "admin", "New order received",
		fmt.Sprintf("%s placed an order for $%.2f", user.Name, order.TotalPrice), order.ID)
	return nil
}

func (d *Dispatcher) handleStatusChanged(ctx context.Context, event EventPayload) error {
	order, user, err := d.resolve(ctx, event)
	if err != nil || order == nil {
		return err
	}

	html := BuildStatusChangeHTML(user.Name, order)
	subject := fmt.Sprintf("Your CakeShop order is %s", order.Status)

	if _, err := d.email.SendEmail(ctx, user.Email, subject, html); err != nil {
		d.metrics.RecordCount(ctx, awspkg.MetricEmailsFailed, nil)
		return fmt.Errorf("failed to send status update to %s: %w", user.Email, err)
	}
	d.metrics.RecordCount(ctx, awspkg.MetricEmailsSent, nil)

	tokens, err := d.deviceTokens.FindByUserID(ctx, user.ID)
	if err != nil {
		d.logger.Error("Failed to load device tokens",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil
	}
	d.publishPush(ctx, tokens, "Order update",
		fmt.Sprintf("Your order is now %s", order.Status), order.ID)
	return nil
}

func (d *Dispatcher) handleBroadcast(ctx context.Context, event EventPayload) error {
	tokens, err := d.deviceTokens.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load device tokens for broadcast: %w", err)
	}
	d.publishPush(ctx, tokens, event.Title, event.Body, uuid.Nil)
	return nil
}

// resolve loads the order and its owner referenced by an event.
func (d *Dispatcher) resolve(ctx context.Context, event EventPayload) (*models.Order, *models.User, error) {
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		d.logger.Error("Dropping event with invalid order id",
			zap.String("order_id", event.OrderID))
		return nil, nil, nil
	}
	order, err := d.orders.FindByID(ctx, orderID)
	if err != nil {
		// A deleted order will never reappear; redelivering the event would
		// loop forever.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.logger.Warn("Dropping event for deleted order",
				zap.String("order_id", event.OrderID))
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	user, err := d.users.FindByID(ctx, order.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.logger.Warn("Dropping event for deleted user",
				zap.String("user_id", order.UserID.String()))
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load user %s: %w", order.UserID, err)
	}
	return order, user, nil
}

func (d *Dispatcher) pushToRole(ctx context.Context, role, title, body string, orderID uuid.UUID) {
	tokens, err := d.deviceTokens.FindByRole(ctx, role)
	if err != nil {
		d.logger.Error("Failed to load device tokens by role",
			zap.String("role", role), zap.Error(err))
		return
	}
	d.publishPush(ctx, tokens, title, body, orderID)
}

func (d *Dispatcher) publishPush(ctx context.Context, tokens []models.DeviceToken, title, body string, orderID uuid.UUID) {
	if len(tokens) == 0 || d.push == nil || d.pushTopicARN == "" {
		return
	}
	msg := PushMessage{Title: title, Body: body}
	for _, t := range tokens {
		msg.Tokens = append(msg.Tokens, t.Token)
	}
	if orderID != uuid.Nil {
		msg.Data = map[string]string{"order_id": orderID.String()}
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		d.logger.Error("Failed to marshal push message", zap.Error(err))
		return
	}
	if err := d.push.Publish(ctx, d.pushTopicARN, payload); err != nil {
		d.logger.Error("Failed to publish push message", zap.Error(err))
		return
	}
	d.metrics.RecordValue(ctx, awspkg.MetricPushSent, float64(len(tokens)), nil)
}
