package amqp

import (
	"context"
	"strconv"
	"strings"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

// TimeoutHandler decodes dead-lettered timeout messages (bare order ids) and
// dispatches them to the evaluator. Malformed bodies are dropped, not
// requeued: a message that never parses would loop forever.
type TimeoutHandler struct {
	evaluator interfaces.TimeoutEvaluator
	logger    logger.Logger
}

func NewTimeoutHandler(evaluator interfaces.TimeoutEvaluator, logger logger.Logger) *TimeoutHandler {
	return &TimeoutHandler{
		evaluator: evaluator,
		logger:    logger,
	}
}

func (h *TimeoutHandler) HandlePaymentStage1(ctx context.Context, body []byte) error {
	return h.handle(ctx, body, h.evaluator.HandlePaymentStage1)
}

func (h *TimeoutHandler) HandlePaymentStage2(ctx context.Context, body []byte) error {
	return h.handle(ctx, body, h.evaluator.HandlePaymentStage2)
}

func (h *TimeoutHandler) HandleDeliveryStage1(ctx context.Context, body []byte) error {
	return h.handle(ctx, body, h.evaluator.HandleDeliveryStage1)
}

func (h *TimeoutHandler) HandleDeliveryStage2(ctx context.Context, body []byte) error {
	return h.handle(ctx, body, h.evaluator.HandleDeliveryStage2)
}

func (h *TimeoutHandler) handle(ctx context.Context, body []byte, next func(context.Context, int64) error) error {
	orderID, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse timeout message body", "", map[string]interface{}{
			"body": string(body),
		}, err)
		return nil
	}
	return next(ctx, orderID)
}
