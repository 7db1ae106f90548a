package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/q6kkhvmy6s/rsvp/pkg/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type mockDetacher struct {
	uids []string
	err  error
}

func (m *mockDetacher) DetachPromoter(ctx context.Context, uid string) (int64, error) {
	m.uids = append(m.uids, uid)
	return 2, m.err
}

func delivery(key, body string) (amqp.Delivery, *ackRecorder) {
	ack := &ackRecorder{}
	return amqp.Delivery{Acknowledger: ack, RoutingKey: key, Body: []byte(body)}, ack
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		body     string
		err      error
		detached []string
		acked    bool
		requeue  bool
	}{
		{"user deleted", rabbitmq.KeyUserDeleted, `{"uid":"u-1","email":"u@example.com"}`, nil, []string{"u-1"}, true, false},
		{"other user key", "user.updated", `{"uid":"u-1"}`, nil, nil, true, false},
		{"malformed body", rabbitmq.KeyUserDeleted, `{"uid":`, nil, nil, false, false},
		{"missing uid", rabbitmq.KeyUserDeleted, `{"email":"u@example.com"}`, nil, nil, false, false},
		{"store failure", rabbitmq.KeyUserDeleted, `{"uid":"u-1"}`, errors.New("db down"), []string{"u-1"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &mockDetacher{err: tt.err}
			msg, ack := delivery(tt.key, tt.body)

			NewUserConsumer(events).handleMessage(context.Background(), msg)

			assert.Equal(t, tt.detached, events.uids)
			assert.Equal(t, tt.acked, ack.acked)
			assert.Equal(t, !tt.acked, ack.nacked)
			assert.Equal(t, tt.requeue, ack.requeue)
		})
	}
}

func TestStart_DrainsUntilClosed(t *testing.T) {
	events := &mockDetacher{}
	msgs := make(chan amqp.Delivery, 2)
	m1, a1 := delivery(rabbitmq.KeyUserDeleted, `{"uid":"u-1"}`)
	m2, a2 := delivery(rabbitmq.KeyUserDeleted, `{"uid":"u-2"}`)
	msgs <- m1
	msgs <- m2
	close(msgs)

	<-NewUserConsumer(events).Start(context.Background(), msgs)

	assert.Equal(t, []string{"u-1", "u-2"}, events.uids)
	assert.True(t, a1.acked)
	assert.True(t, a2.acked)
}
