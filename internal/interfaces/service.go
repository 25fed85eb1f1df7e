package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/domain"
)

// Команды и ответы сервиса заказов
type SubmitOrderCommand struct {
	AddressBookID int64
	Remark        string
}

type SubmitOrderResult struct {
	OrderID     int64
	OrderNumber string
	OrderTime   time.Time
	Amount      float64
}

// PrepayTicket is what the (stubbed) payment gateway hands back to the client.
type PrepayTicket struct {
	NonceStr  string
	PaySign   string
	Timestamp string
	SignType  string
	Package   string
}

type OrderDetailsResult struct {
	Order   *domain.Order
	Details []domain.OrderDetail
}

type OrderPageResult struct {
	Total  int64
	Orders []*domain.Order
}

type OrderStatistics struct {
	ToBeConfirmed      int64
	Confirmed          int64
	DeliveryInProgress int64
}

// Интерфейсы Сервисов (Business Logic)
type OrderService interface {
	Submit(ctx context.Context, userID int64, cmd SubmitOrderCommand) (*SubmitOrderResult, error)
	Pay(ctx context.Context, userID int64, orderNumber string) (*PrepayTicket, error)
	// ConfirmPayment is idempotent: a repeat call for the same number observes
	// the order already out of PendingPayment and performs no mutation.
	ConfirmPayment(ctx context.Context, orderNumber string) error
	CancelByUser(ctx context.Context, userID, orderID int64) error
	Accept(ctx context.Context, orderID int64) error
	Reject(ctx context.Context, orderID int64, reason string) error
	Cancel(ctx context.Context, orderID int64, reason string) error
	Dispatch(ctx context.Context, orderID int64) error
	Complete(ctx context.Context, orderID int64) error
	Reminder(ctx context.Context, orderID int64) error
	Repeat(ctx context.Context, userID, orderID int64) error
	Details(ctx context.Context, orderID int64) (*OrderDetailsResult, error)
	PageForUser(ctx context.Context, userID int64, status *domain.Status, page, pageSize int) (*OrderPageResult, error)
	PageForAdmin(ctx context.Context, q domain.OrderPageQuery) (*OrderPageResult, error)
	Statistics(ctx context.Context) (*OrderStatistics, error)
}

// TimeoutEvaluator consumes dead-lettered timeout messages. Every handler
// re-reads the live order state before acting; a message is never taken as
// proof that the timeout condition still holds.
type TimeoutEvaluator interface {
	HandlePaymentStage1(ctx context.Context, orderID int64) error
	HandlePaymentStage2(ctx context.Context, orderID int64) error
	HandleDeliveryStage1(ctx context.Context, orderID int64) error
	HandleDeliveryStage2(ctx context.Context, orderID int64) error
}

// ClientBroadcaster pushes a raw message to every client connection attached
// to this instance.
type ClientBroadcaster interface {
	Broadcast(message []byte)
}

// RangeChecker validates that an address lies within the delivery range.
type RangeChecker interface {
	CheckWithinRange(ctx context.Context, address string) error
}

// PaymentGateway is the external payment collaborator (stubbed).
type PaymentGateway interface {
	Pay(ctx context.Context, orderNumber string, amount float64) (*PrepayTicket, error)
	Refund(ctx context.Context, orderNumber string, amount float64) error
}
