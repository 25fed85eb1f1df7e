package rabbitmq

import (
	"fmt"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/config"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// TimeoutExchange receives stage-entry messages routed by delay key.
	TimeoutExchange = "order.direct"
	// TimeoutDLX receives expired messages from the delay queues.
	TimeoutDLX = "order.dlx"
	// NotificationExchange fans notification envelopes out to every instance.
	NotificationExchange = "notifications.fanout"
)

// Durable process queues consumed by the timeout evaluator.
const (
	QueuePaymentStage1  = "order.process.payment.stage1.queue"
	QueuePaymentStage2  = "order.process.payment.stage2.queue"
	QueueDeliveryStage1 = "order.process.delivery.stage1.queue"
	QueueDeliveryStage2 = "order.process.delivery.stage2.queue"
)

// delayStage describes one two-queue delay hop: a TTL queue nobody consumes
// that dead-letters into a process queue the evaluator listens on.
type delayStage struct {
	route        string // binding key on TimeoutExchange
	delayQueue   string
	dlxKey       string // binding key on TimeoutDLX
	processQueue string
	ttl          time.Duration
}

func stages(t config.TimeoutConfig) []delayStage {
	return []delayStage{
		{
			route:        interfaces.RouteDelayPaymentStage1,
			delayQueue:   "order.delay.payment.stage1.queue",
			dlxKey:       "order.dlx.payment.stage1",
			processQueue: QueuePaymentStage1,
			ttl:          t.PaymentStage1(),
		},
		{
			route:        interfaces.RouteDelayPaymentStage2,
			delayQueue:   "order.delay.payment.stage2.queue",
			dlxKey:       "order.dlx.payment.stage2",
			processQueue: QueuePaymentStage2,
			ttl:          t.PaymentStage2(),
		},
		{
			route:        interfaces.RouteDelayDeliveryStage1,
			delayQueue:   "order.delay.delivery.stage1.queue",
			dlxKey:       "order.dlx.delivery.stage1",
			processQueue: QueueDeliveryStage1,
			ttl:          t.DeliveryStage1(),
		},
		{
			route:        interfaces.RouteDelayDeliveryStage2,
			delayQueue:   "order.delay.delivery.stage2.queue",
			dlxKey:       "order.dlx.delivery.stage2",
			processQueue: QueueDeliveryStage2,
			ttl:          t.DeliveryStage2(),
		},
	}
}

// SetupTopology declares the full broker layout. Declarations are idempotent,
// every process runs this at startup so the timers survive any single
// instance crashing.
func SetupTopology(conn Connection, timeouts config.TimeoutConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(TimeoutExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare timeout exchange: %w", err)
	}
	if err := ch.ExchangeDeclare(TimeoutDLX, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange: %w", err)
	}

	for _, st := range stages(timeouts) {
		// Очередь-таймер: без потребителей, сообщения живут ttl и уходят в DLX
		args := amqp.Table{
			"x-message-ttl":             st.ttl.Milliseconds(),
			"x-dead-letter-exchange":    TimeoutDLX,
			"x-dead-letter-routing-key": st.dlxKey,
		}
		if _, err := ch.QueueDeclare(st.delayQueue, true, false, false, false, args); err != nil {
			return fmt.Errorf("failed to declare delay queue %s: %w", st.delayQueue, err)
		}
		if err := ch.QueueBind(st.delayQueue, st.route, TimeoutExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind delay queue %s: %w", st.delayQueue, err)
		}

		if _, err := ch.QueueDeclare(st.processQueue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare process queue %s: %w", st.processQueue, err)
		}
		if err := ch.QueueBind(st.processQueue, st.dlxKey, TimeoutDLX, false, nil); err != nil {
			return fmt.Errorf("failed to bind process queue %s: %w", st.processQueue, err)
		}
	}

	if err := ch.ExchangeDeclare(NotificationExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare notification exchange: %w", err)
	}

	return nil
}
