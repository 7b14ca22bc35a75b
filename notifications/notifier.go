package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Queue abstracts the notification queue. Satisfied by pkg/aws SQSQueue.
type Queue interface {
	SendMessage(ctx context.Context, body string) error
}

// QueueNotifier enqueues notification events instead of delivering them
// inline. Delivery happens asynchronously in the Dispatcher, so a slow or
// unavailable mail/push backend never blocks the request path.
type QueueNotifier struct {
	queue  Queue
	logger *zap.Logger
}

func NewQueueNotifier(queue Queue, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{queue: queue, logger: logger}
}

// OrderPlaced enqueues an order confirmation notification.
func (n *QueueNotifier) OrderPlaced(ctx context.Context, orderID, userID uuid.UUID) error {
	return n.enqueue(ctx, EventPayload{
		EventType: EventOrderPlaced,
		OrderID:   orderID.String(),
		UserID:    userID.String(),
		Timestamp: time.Now().UTC(),
	})
}

// OrderStatusChanged enqueues a status update notification.
func (n *QueueNotifier) OrderStatusChanged(ctx context.Context, orderID, userID uuid.UUID, status string) error {
	return n.enqueue(ctx, EventPayload{
		EventType: EventOrderStatusChanged,
		OrderID:   orderID.String(),
		UserID:    userID.String(),
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
}

// AdminBroadcast enqueues a push notification for every registered device.
func (n *QueueNotifier) AdminBroadcast(ctx context.Context, title, body string) error {
	return n.enqueue(ctx, EventPayload{
		EventType: EventAdminBroadcast,
		Title:     title,
		Body:      body,
		Timestamp: time.Now().UTC(),
	})
}

func (n *QueueNotifier) enqueue(ctx context.Context, event EventPayload) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.EventType, err)
	}
	if err := n.queue.SendMessage(ctx, string(data)); err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", event.EventType, err)
	}
	n.logger.Debug("Notification event enqueued",
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.OrderID))
	return nil
}
