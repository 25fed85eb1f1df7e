package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(string, string, string, map[string]interface{})         {}
func (nopLogger) Debug(string, string, string, map[string]interface{})        {}
func (nopLogger) Warn(string, string, string, map[string]interface{})         {}
func (nopLogger) Error(string, string, string, map[string]interface{}, error) {}

type fakeBroadcaster struct {
	messages [][]byte
}

func (b *fakeBroadcaster) Broadcast(message []byte) {
	b.messages = append(b.messages, message)
}

func TestDeliverForwardsRawEnvelope(t *testing.T) {
	hub := &fakeBroadcaster{}
	svc := NewService(hub, nopLogger{})

	raw := []byte(`{"type":1,"orderId":42,"content":"order number: N-1"}`)
	err := svc.Deliver(context.Background(), interfaces.Notification{
		Type:    interfaces.NotificationNewOrder,
		OrderID: 42,
		Content: "order number: N-1",
	}, raw)

	require.NoError(t, err)
	require.Len(t, hub.messages, 1)

	// Клиенты получают байты с провода как есть
	assert.Equal(t, raw, hub.messages[0])
}
