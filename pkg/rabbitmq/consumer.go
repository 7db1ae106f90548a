package rabbitmq

import (
	"fmt"

	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer declares a durable queue bound to the exchange for each of the
// given routing patterns.
func NewConsumer(url, queue string, patterns ...string) (*Consumer, error) {
	conn, ch, err := open(url)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = closeAll(ch, conn)
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	for _, pattern := range patterns {
		if err := ch.QueueBind(q.Name, pattern, ExchangeName, false, nil); err != nil {
			_ = closeAll(ch, conn)
			return nil, fmt.Errorf("rabbitmq queue bind %s: %w", pattern, err)
		}
	}

	return &Consumer{conn: conn, channel: ch, queue: q.Name}, nil
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // ack manually after processing
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	logger.Log.Info("consuming from queue", zap.String("queue", c.queue))
	return msgs, nil
}

func (c *Consumer) Close() error {
	return closeAll(c.channel, c.conn)
}
