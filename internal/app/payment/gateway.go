package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

// MockGateway stands in for the real payment provider. It always succeeds;
// the order service treats it as an external collaborator either way.
type MockGateway struct {
	logger logger.Logger
}

func NewMockGateway(lgr logger.Logger) *MockGateway {
	return &MockGateway{logger: lgr}
}

var _ interfaces.PaymentGateway = (*MockGateway)(nil)

func (g *MockGateway) Pay(ctx context.Context, orderNumber string, amount float64) (*interfaces.PrepayTicket, error) {
	g.logger.Info("payment_simulated", fmt.Sprintf("Simulated payment for order %s", orderNumber), "", map[string]interface{}{
		"order_number": orderNumber,
		"amount":       amount,
	})

	now := time.Now()
	return &interfaces.PrepayTicket{
		NonceStr:  fmt.Sprintf("mock_nonce_%d", now.UnixNano()),
		PaySign:   "mock_sign",
		Timestamp: fmt.Sprintf("%d", now.Unix()),
		SignType:  "RSA",
		Package:   "prepay_id=mock_prepay_id",
	}, nil
}

func (g *MockGateway) Refund(ctx context.Context, orderNumber string, amount float64) error {
	g.logger.Info("refund_simulated", fmt.Sprintf("Simulated refund for order %s", orderNumber), "", map[string]interface{}{
		"order_number": orderNumber,
		"amount":       amount,
	})
	return nil
}
