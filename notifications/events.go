package notifications

import "time"

// Event types carried on the notification queue.
const (
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
	EventAdminBroadcast     = "admin_broadcast"
)

// EventPayload is a notification intent. Producers enqueue it on the
// notification queue; the dispatcher resolves the referenced entities and
// performs the actual email/push delivery.
type EventPayload struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PushMessage is the payload published to the push gateway topic. The gateway
// owns token validity checks, retries and delivery receipts.
type PushMessage struct {
	Tokens []string `json:"tokens"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Data   any      `json:"data,omitempty"`
}
