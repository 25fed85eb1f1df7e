package order

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

const (
	cancelReasonUser = "cancelled by user"
)

type Service struct {
	orders    interfaces.OrderRepository
	carts     interfaces.CartRepository
	addresses interfaces.AddressRepository
	sales     interfaces.SalesCounter
	publisher interfaces.MessagePublisher
	ranger    interfaces.RangeChecker
	gateway   interfaces.PaymentGateway
	logger    logger.Logger

	now func() time.Time
}

func NewService(
	orders interfaces.OrderRepository,
	carts interfaces.CartRepository,
	addresses interfaces.AddressRepository,
	sales interfaces.SalesCounter,
	publisher interfaces.MessagePublisher,
	ranger interfaces.RangeChecker,
	gateway interfaces.PaymentGateway,
	logger logger.Logger,
) *Service {
	return &Service{
		orders:    orders,
		carts:     carts,
		addresses: addresses,
		sales:     sales,
		publisher: publisher,
		ranger:    ranger,
		gateway:   gateway,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, userID int64, cmd interfaces.SubmitOrderCommand) (*interfaces.SubmitOrderResult, error) {
	// 1. Проверка адреса и зоны доставки
	addr, err := s.addresses.GetByID(ctx, cmd.AddressBookID)
	if err != nil {
		return nil, err
	}
	if err := s.ranger.CheckWithinRange(ctx, addr.FullAddress()); err != nil {
		return nil, err
	}

	// 2. Корзина не должна быть пустой
	carts, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(carts) == 0 {
		return nil, domain.ErrCartEmpty
	}

	// 3. Создание заказа со снимком адреса и позиций
	now := s.now()
	order := &domain.Order{
		Number:                s.generateNumber(now),
		Status:                domain.StatusPendingPayment,
		PayStatus:             domain.PayStatusUnpaid,
		Consignee:             addr.Consignee,
		Phone:                 addr.Phone,
		Address:               addr.FullAddress(),
		Remark:                cmd.Remark,
		EstimatedDeliveryTime: now.Add(time.Hour),
	}
	order.StampCreate(now, userID)

	details := make([]domain.OrderDetail, len(carts))
	for i := range carts {
		details[i] = cartItemToDetail(carts[i])
		order.Amount += carts[i].Amount * float64(carts[i].Number)
	}

	if err := s.orders.Insert(ctx, order, details); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", "", nil, err)
		return nil, err
	}

	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		return nil, err
	}

	// 4. Запускаем таймер оплаты: сообщение нельзя отозвать, поэтому
	// "отменой" таймера служит повторная проверка статуса в evaluator
	if err := s.publisher.PublishTimeout(ctx, interfaces.RouteDelayPaymentStage1, order.ID); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish payment timeout message", "", map[string]interface{}{
			"order_id": order.ID,
		}, err)
	}

	s.logger.Debug("order_submitted", fmt.Sprintf("Order %s submitted", order.Number), "", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"amount":   order.Amount,
	})

	return &interfaces.SubmitOrderResult{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		OrderTime:   order.OrderTime,
		Amount:      order.Amount,
	}, nil
}

// Pay runs the (stubbed) payment gateway call and then drives the same
// confirmation path a real gateway callback would.
func (s *Service) Pay(ctx context.Context, userID int64, orderNumber string) (*interfaces.PrepayTicket, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}

	ticket, err := s.gateway.Pay(ctx, orderNumber, order.Amount)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "payment", Err: err}
	}

	if err := s.ConfirmPayment(ctx, orderNumber); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ConfirmPayment transitions PendingPayment -> ToBeConfirmed. Safe to call
// more than once for the same order number: a repeat call finds the order
// already past PendingPayment and writes nothing.
func (s *Service) ConfirmPayment(ctx context.Context, orderNumber string) error {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}

	// Идемпотентность: заказ уже оплачен или обработан
	if order.Status != domain.StatusPendingPayment {
		return nil
	}

	now := s.now()
	paid := domain.PayStatusPaid
	applied, err := s.orders.ConditionalUpdate(ctx, order.ID, domain.StatusPendingPayment, domain.OrderUpdate{
		Status:       domain.StatusToBeConfirmed,
		PayStatus:    &paid,
		CheckoutTime: &now,
	})
	if err != nil {
		return err
	}
	if !applied {
		// Проиграли гонку дубликату подтверждения - итог тот же
		return nil
	}

	s.notify(ctx, interfaces.Notification{
		Type:    interfaces.NotificationNewOrder,
		OrderID: order.ID,
		Content: "order number: " + order.Number,
	})
	return nil
}

func (s *Service) CancelByUser(ctx context.Context, userID, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return domain.ErrOrderNotFound
	}

	// Пользователь может отменить только до принятия заказа
	if order.Status > domain.StatusToBeConfirmed {
		return &domain.StatusConflictError{Expected: domain.StatusToBeConfirmed, Actual: order.Status}
	}

	now := s.now()
	reason := cancelReasonUser
	upd := domain.OrderUpdate{
		Status:       domain.StatusCancelled,
		CancelReason: &reason,
		CancelTime:   &now,
	}

	if order.PayStatus == domain.PayStatusPaid {
		if err := s.refund(ctx, order); err != nil {
			return err
		}
		refunded := domain.PayStatusRefunded
		upd.PayStatus = &refunded
	}

	return s.transition(ctx, order.ID, order.Status, upd)
}

// Accept moves a paid order into Confirmed.
func (s *Service) Accept(ctx context.Context, orderID int64) error {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return err
	}
	return s.transition(ctx, orderID, domain.StatusToBeConfirmed, domain.OrderUpdate{
		Status: domain.StatusConfirmed,
	})
}

// Reject refuses a ToBeConfirmed order, refunding if already paid.
func (s *Service) Reject(ctx context.Context, orderID int64, reason string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusToBeConfirmed {
		return &domain.StatusConflictError{Expected: domain.StatusToBeConfirmed, Actual: order.Status}
	}

	now := s.now()
	upd := domain.OrderUpdate{
		Status:          domain.StatusCancelled,
		RejectionReason: &reason,
		CancelTime:      &now,
	}

	if order.PayStatus == domain.PayStatusPaid {
		if err := s.refund(ctx, order); err != nil {
			return err
		}
		refunded := domain.PayStatusRefunded
		upd.PayStatus = &refunded
	}

	return s.transition(ctx, order.ID, domain.StatusToBeConfirmed, upd)
}

// Cancel is the administrative escape hatch, reachable from any non-terminal
// status.
func (s *Service) Cancel(ctx context.Context, orderID int64, reason string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return &domain.StatusConflictError{Expected: domain.StatusDeliveryInProgress, Actual: order.Status}
	}

	now := s.now()
	upd := domain.OrderUpdate{
		Status:       domain.StatusCancelled,
		CancelReason: &reason,
		CancelTime:   &now,
	}

	if order.PayStatus == domain.PayStatusPaid {
		if err := s.refund(ctx, order); err != nil {
			return err
		}
		refunded := domain.PayStatusRefunded
		upd.PayStatus = &refunded
	}

	return s.transition(ctx, order.ID, order.Status, upd)
}

func (s *Service) Dispatch(ctx context.Context, orderID int64) error {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return err
	}
	if err := s.transition(ctx, orderID, domain.StatusConfirmed, domain.OrderUpdate{
		Status: domain.StatusDeliveryInProgress,
	}); err != nil {
		return err
	}

	// Запускаем таймер доставки
	if err := s.publisher.PublishTimeout(ctx, interfaces.RouteDelayDeliveryStage1, orderID); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish delivery timeout message", "", map[string]interface{}{
			"order_id": orderID,
		}, err)
	}
	return nil
}

func (s *Service) Complete(ctx context.Context, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.transition(ctx, orderID, domain.StatusDeliveryInProgress, domain.OrderUpdate{
		Status:       domain.StatusCompleted,
		DeliveryTime: &now,
	}); err != nil {
		return err
	}

	// Счётчик продаж за календарную дату заказа; ошибки не блокируют заказ
	details, err := s.orders.ListDetails(ctx, orderID)
	if err != nil {
		s.logger.Error("db_error", "Failed to load details for sales counter", "", nil, err)
		return nil
	}
	for _, d := range details {
		if err := s.sales.IncrementDailySales(ctx, order.OrderTime, d.Name, d.Number); err != nil {
			s.logger.Error("sales_counter_failed", "Failed to increment sales counter", "", map[string]interface{}{
				"order_id": orderID,
				"item":     d.Name,
			}, err)
		}
	}
	return nil
}

// Reminder pushes a broadcast only, no state change.
func (s *Service) Reminder(ctx context.Context, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusToBeConfirmed {
		return &domain.StatusConflictError{Expected: domain.StatusToBeConfirmed, Actual: order.Status}
	}

	s.notify(ctx, interfaces.Notification{
		Type:    interfaces.NotificationReminder,
		OrderID: order.ID,
		Content: "order number: " + order.Number,
	})
	return nil
}

// Repeat copies a past order's lines into the cart as fresh entries. The
// original order is never touched.
func (s *Service) Repeat(ctx context.Context, userID, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return domain.ErrOrderNotFound
	}

	details, err := s.orders.ListDetails(ctx, orderID)
	if err != nil {
		return err
	}
	if len(details) == 0 {
		s.logger.Warn("repeat_order_empty", fmt.Sprintf("Order %d has no detail lines", orderID), "", nil)
		return nil
	}

	now := s.now()
	items := make([]domain.CartItem, len(details))
	for i := range details {
		items[i] = detailToCartItem(details[i], userID, now)
	}
	return s.carts.InsertBatch(ctx, items)
}

func (s *Service) Details(ctx context.Context, orderID int64) (*interfaces.OrderDetailsResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	details, err := s.orders.ListDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &interfaces.OrderDetailsResult{Order: order, Details: details}, nil
}

func (s *Service) PageForUser(ctx context.Context, userID int64, status *domain.Status, page, pageSize int) (*interfaces.OrderPageResult, error) {
	orders, total, err := s.orders.PageByUser(ctx, userID, status, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &interfaces.OrderPageResult{Total: total, Orders: orders}, nil
}

func (s *Service) PageForAdmin(ctx context.Context, q domain.OrderPageQuery) (*interfaces.OrderPageResult, error) {
	orders, total, err := s.orders.Page(ctx, q)
	if err != nil {
		return nil, err
	}
	return &interfaces.OrderPageResult{Total: total, Orders: orders}, nil
}

func (s *Service) Statistics(ctx context.Context) (*interfaces.OrderStatistics, error) {
	var stats interfaces.OrderStatistics
	var err error

	if stats.ToBeConfirmed, err = s.orders.CountByStatus(ctx, domain.StatusToBeConfirmed); err != nil {
		return nil, err
	}
	if stats.Confirmed, err = s.orders.CountByStatus(ctx, domain.StatusConfirmed); err != nil {
		return nil, err
	}
	if stats.DeliveryInProgress, err = s.orders.CountByStatus(ctx, domain.StatusDeliveryInProgress); err != nil {
		return nil, err
	}
	return &stats, nil
}

// transition performs the guarded status write. On a lost race it re-reads
// the order so the conflict error can name the actual status.
func (s *Service) transition(ctx context.Context, orderID int64, expected domain.Status, upd domain.OrderUpdate) error {
	applied, err := s.orders.ConditionalUpdate(ctx, orderID, expected, upd)
	if err != nil {
		return err
	}
	if !applied {
		current, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		return &domain.StatusConflictError{Expected: expected, Actual: current.Status}
	}
	return nil
}

func (s *Service) refund(ctx context.Context, order *domain.Order) error {
	if err := s.gateway.Refund(ctx, order.Number, order.Amount); err != nil {
		return &domain.UpstreamError{Op: "refund", Err: err}
	}
	return nil
}

func (s *Service) notify(ctx context.Context, n interfaces.Notification) {
	if err := s.publisher.PublishNotification(ctx, n); err != nil {
		// Уведомление best-effort, транзакцию не блокируем
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish notification", "", map[string]interface{}{
			"order_id": n.OrderID,
			"type":     n.Type,
		}, err)
	}
}

// generateNumber builds a collision-resistant order number from the submit
// timestamp plus a 4-digit random suffix.
func (s *Service) generateNumber(now time.Time) string {
	return now.Format("20060102150405") + strconv.Itoa(rand.Intn(9000)+1000)
}
