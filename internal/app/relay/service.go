package relay

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

// Service forwards broadcast envelopes, received on this instance's fanout
// subscription, to the client connections attached locally. Which instance
// caused a state change and which instance holds a client's connection are
// unrelated; the fanout exchange bridges the two.
type Service struct {
	hub    interfaces.ClientBroadcaster
	logger logger.Logger
}

func NewService(hub interfaces.ClientBroadcaster, logger logger.Logger) *Service {
	return &Service{
		hub:    hub,
		logger: logger,
	}
}

func (s *Service) Deliver(ctx context.Context, n interfaces.Notification, raw []byte) error {
	s.logger.Debug("broadcast_received", fmt.Sprintf("Relaying notification for order %d to local clients", n.OrderID), "", map[string]interface{}{
		"type":     n.Type,
		"order_id": n.OrderID,
	})

	s.hub.Broadcast(raw)
	return nil
}
