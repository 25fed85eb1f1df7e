package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/YelzhanWeb/takeaway/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.MessagePublisher {
	return &publisher{conn: conn}
}

// PublishTimeout drops the order id into one of the delay queues. The body is
// just the id: the evaluator re-reads live state anyway, so redelivery of the
// same message is always safe.
func (p *publisher) PublishTimeout(ctx context.Context, route string, orderID int64) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(TimeoutExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	err = ch.Publish(TimeoutExchange, route, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "text/plain",
		Body:         []byte(strconv.FormatInt(orderID, 10)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish timeout message: %w", err)
	}

	return nil
}

func (p *publisher) PublishNotification(ctx context.Context, n interfaces.Notification) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(NotificationExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = ch.Publish(NotificationExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}
