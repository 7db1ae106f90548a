package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	ExchangeName = "reservations"
	ExchangeKind = "topic"
)

// Routing keys published on the exchange.
const (
	KeyEventCreated       = "event.created"
	KeyEventUpdated       = "event.updated"
	KeyReservationCreated = "reservation.created"
	KeyReservationDeleted = "reservation.deleted"
	KeyPromoterAttached   = "promoter.attached"
	KeyUserDeleted        = "user.deleted"
)

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, ch, err := open(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch}, nil
}

// open dials the broker and declares the shared exchange.
func open(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	return conn, ch, nil
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := p.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	logger.Log.Debug("published message",
		zap.String("exchange", ExchangeName),
		zap.String("routing_key", routingKey),
		zap.Int("bytes", len(body)),
	)
	return nil
}

func (p *Publisher) Close() error {
	return closeAll(p.channel, p.conn)
}

func closeAll(ch *amqp.Channel, conn *amqp.Connection) error {
	var err error
	if ch != nil {
		err = multierr.Append(err, ch.Close())
	}
	if conn != nil {
		err = multierr.Append(err, conn.Close())
	}
	return err
}
