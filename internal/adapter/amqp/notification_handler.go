package amqp

import (
	"context"
	"encoding/json"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

// RelayService is the local delivery side of the broadcast relay.
type RelayService interface {
	Deliver(ctx context.Context, n interfaces.Notification, raw []byte) error
}

type NotificationHandler struct {
	relay  RelayService
	logger logger.Logger
}

func NewNotificationHandler(relay RelayService, logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		relay:  relay,
		logger: logger,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var n interfaces.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return nil
	}

	return h.relay.Deliver(ctx, n, body)
}
