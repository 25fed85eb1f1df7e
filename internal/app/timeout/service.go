package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

const (
	cancelReasonPayment  = "payment timeout"
	cancelReasonDelivery = "delivery timeout"
)

// Service evaluates dead-lettered timeout messages. The broker may deliver a
// message late or more than once; every handler therefore re-reads the live
// order and only acts when the guard status still holds.
type Service struct {
	orders    interfaces.OrderRepository
	publisher interfaces.MessagePublisher
	logger    logger.Logger

	now func() time.Time
}

func NewService(orders interfaces.OrderRepository, publisher interfaces.MessagePublisher, logger logger.Logger) *Service {
	return &Service{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// HandlePaymentStage1 escalates a still-unpaid order into the long payment
// delay queue.
func (s *Service) HandlePaymentStage1(ctx context.Context, orderID int64) error {
	return s.stage1(ctx, orderID, domain.StatusPendingPayment, interfaces.RouteDelayPaymentStage2)
}

// HandlePaymentStage2 cancels an order that stayed unpaid through both stages.
func (s *Service) HandlePaymentStage2(ctx context.Context, orderID int64) error {
	return s.stage2(ctx, orderID, domain.StatusPendingPayment, cancelReasonPayment)
}

// HandleDeliveryStage1 escalates an order still out for delivery into the
// long delivery delay queue.
func (s *Service) HandleDeliveryStage1(ctx context.Context, orderID int64) error {
	return s.stage1(ctx, orderID, domain.StatusDeliveryInProgress, interfaces.RouteDelayDeliveryStage2)
}

// HandleDeliveryStage2 cancels an order that stayed out for delivery through
// both stages.
func (s *Service) HandleDeliveryStage2(ctx context.Context, orderID int64) error {
	return s.stage2(ctx, orderID, domain.StatusDeliveryInProgress, cancelReasonDelivery)
}

func (s *Service) stage1(ctx context.Context, orderID int64, guard domain.Status, nextRoute string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			// Заказ исчез - не ошибка, просто прекращаем отслеживание
			s.logger.Debug("timeout_order_missing", fmt.Sprintf("Order %d no longer exists", orderID), "", nil)
			return nil
		}
		return err
	}

	if order.Status != guard {
		s.logger.Debug("timeout_tracking_stopped", fmt.Sprintf("Order %d moved on, tracking stopped", orderID), "", map[string]interface{}{
			"status": order.Status.String(),
		})
		return nil
	}

	s.logger.Info("timeout_escalated", fmt.Sprintf("Order %d still %s, escalating to stage 2", orderID, guard), "", map[string]interface{}{
		"route": nextRoute,
	})
	return s.publisher.PublishTimeout(ctx, nextRoute, orderID)
}

func (s *Service) stage2(ctx context.Context, orderID int64, guard domain.Status, reason string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			s.logger.Debug("timeout_order_missing", fmt.Sprintf("Order %d no longer exists", orderID), "", nil)
			return nil
		}
		return err
	}

	if order.Status != guard {
		s.logger.Debug("timeout_tracking_stopped", fmt.Sprintf("Order %d moved on, no cancellation", orderID), "", map[string]interface{}{
			"status": order.Status.String(),
		})
		return nil
	}

	now := s.now()
	applied, err := s.orders.ConditionalUpdate(ctx, orderID, guard, domain.OrderUpdate{
		Status:       domain.StatusCancelled,
		CancelReason: &reason,
		CancelTime:   &now,
	})
	if err != nil {
		return err
	}
	if !applied {
		// Проиграли гонку другому писателю (например, отмене пользователем)
		s.logger.Debug("timeout_cancel_lost_race", fmt.Sprintf("Order %d changed concurrently, no-op", orderID), "", nil)
		return nil
	}

	s.logger.Info("timeout_cancelled", fmt.Sprintf("Order %d auto-cancelled: %s", orderID, reason), "", map[string]interface{}{
		"reason": reason,
	})
	return nil
}
