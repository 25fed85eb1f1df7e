package amqp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

type fakeRelay struct {
	notifications []interfaces.Notification
	raws          [][]byte
}

func (r *fakeRelay) Deliver(_ context.Context, n interfaces.Notification, raw []byte) error {
	r.notifications = append(r.notifications, n)
	r.raws = append(r.raws, raw)
	return nil
}

func TestHandleNotification(t *testing.T) {
	relay := &fakeRelay{}
	h := NewNotificationHandler(relay, nopLogger{})

	body := []byte(`{"type":2,"orderId":17,"content":"order number: N-17"}`)
	require.NoError(t, h.HandleNotification(context.Background(), body))

	require.Len(t, relay.notifications, 1)
	assert.Equal(t, interfaces.NotificationReminder, relay.notifications[0].Type)
	assert.Equal(t, int64(17), relay.notifications[0].OrderID)
	assert.Equal(t, "order number: N-17", relay.notifications[0].Content)
	assert.Equal(t, body, relay.raws[0])
}

func TestHandleNotificationDropsMalformedBody(t *testing.T) {
	relay := &fakeRelay{}
	h := NewNotificationHandler(relay, nopLogger{})

	require.NoError(t, h.HandleNotification(context.Background(), []byte("{broken")))

	assert.Empty(t, relay.notifications)
}
