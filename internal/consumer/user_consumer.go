package consumer

import (
	"context"
	"encoding/json"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"github.com/q6kkhvmy6s/rsvp/pkg/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// PromoterDetacher removes a user from every event team.
type PromoterDetacher interface {
	DetachPromoter(ctx context.Context, uid string) (int64, error)
}

type UserConsumer struct {
	events PromoterDetacher
}

func NewUserConsumer(events PromoterDetacher) *UserConsumer {
	return &UserConsumer{events: events}
}

// Start handles deliveries until msgs is closed. The returned channel is
// closed once the last delivery has been settled.
func (uc *UserConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			uc.handleMessage(ctx, msg)
		}
		logger.Log.Info("user consumer: channel closed, stopping")
	}()
	return done
}

func (uc *UserConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	if msg.RoutingKey != rabbitmq.KeyUserDeleted {
		_ = msg.Ack(false)
		return
	}

	var m models.UserDeleted
	if err := json.Unmarshal(msg.Body, &m); err != nil || m.UID == "" {
		logger.Log.Error("user consumer: bad user.deleted payload", zap.ByteString("body", msg.Body), zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	n, err := uc.events.DetachPromoter(ctx, m.UID)
	if err != nil {
		logger.Log.Error("user consumer: detach failed", zap.String("uid", m.UID), zap.Error(err))
		_ = msg.Nack(false, true) // requeue
		return
	}

	logger.Log.Info("user consumer: detached deleted user", zap.String("uid", m.UID), zap.Int64("events", n))
	_ = msg.Ack(false)
}
