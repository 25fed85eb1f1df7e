package interfaces

import "context"

// Routing keys of the four delay queues. A timeout message published with one
// of these keys sits in the matching TTL queue until the broker dead-letters
// it into the stage's process queue.
const (
	RouteDelayPaymentStage1  = "order.delay.payment.stage1"
	RouteDelayPaymentStage2  = "order.delay.payment.stage2"
	RouteDelayDeliveryStage1 = "order.delay.delivery.stage1"
	RouteDelayDeliveryStage2 = "order.delay.delivery.stage2"
)

// Notification types pushed to clients.
const (
	NotificationNewOrder = 1
	NotificationReminder = 2
)

// Notification is the broadcast envelope. Serialized as JSON text; delivery
// is best-effort at-least-once per subscribed instance.
type Notification struct {
	Type    int    `json:"type"`
	OrderID int64  `json:"orderId"`
	Content string `json:"content"`
}

// Интерфейсы Messaging (Adapter/RabbitMQ)
type MessagePublisher interface {
	// PublishTimeout sends the order id (as a plain text body) to the timeout
	// exchange with the given delay routing key.
	PublishTimeout(ctx context.Context, route string, orderID int64) error
	PublishNotification(ctx context.Context, n Notification) error
}

type MessageConsumer interface {
	// ConsumeTimeouts consumes one of the durable process queues.
	ConsumeTimeouts(ctx context.Context, queue string, handler TimeoutMessageHandler) error
	// ConsumeNotifications binds a server-named, auto-deleting queue to the
	// notification fanout exchange and consumes it.
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
}

type (
	TimeoutMessageHandler func(ctx context.Context, body []byte) error
	NotificationHandler   func(ctx context.Context, body []byte) error
)
