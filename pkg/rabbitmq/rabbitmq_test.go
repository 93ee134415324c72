package rabbitmq

import (
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	a := m.Called(exchange, key, msg)
	return a.Error(0)
}

func (m *mockChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	a := m.Called(queue, autoAck)
	return a.Get(0).(<-chan amqp.Delivery), a.Error(1)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

// acker records acknowledgements per delivery tag.
type acker struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
	done   chan struct{}
}

func (a *acker) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	a.acked = append(a.acked, tag)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *acker) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	a.nacked = append(a.nacked, tag)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *acker) Reject(tag uint64, requeue bool) error { return nil }

func TestNewClient_DeclaresDurableQueue(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", DefaultQueue, true).Return(nil).Once()

	client, err := newClient(ch, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultQueue, client.queue)
	ch.AssertExpectations(t)

	failing := new(mockChannel)
	failing.On("QueueDeclare", "other", true).Return(errors.New("access refused")).Once()
	_, err = newClient(failing, "other")
	assert.ErrorContains(t, err, "failed to declare other")
}

func TestClient_Publish(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", DefaultQueue, true).Return(nil)
	ch.On("Publish", "", DefaultQueue, mock.MatchedBy(func(msg amqp.Publishing) bool {
		return msg.Type == "contact.created" &&
			msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			string(msg.Body) == `{"id":"1"}`
	})).Return(nil).Once()

	client, err := newClient(ch, "")
	require.NoError(t, err)
	require.NoError(t, client.Publish("contact.created", []byte(`{"id":"1"}`)))
	ch.AssertExpectations(t)

	ch.On("Publish", "", DefaultQueue, mock.Anything).Return(errors.New("channel closed")).Once()
	assert.ErrorContains(t, client.Publish("contact.deleted", nil), "failed to publish contact.deleted")
}

func TestClient_ConsumeAcksAndNacks(t *testing.T) {
	deliveries := make(chan amqp.Delivery, 2)
	ch := new(mockChannel)
	ch.On("QueueDeclare", DefaultQueue, true).Return(nil)
	ch.On("Consume", DefaultQueue, false).Return((<-chan amqp.Delivery)(deliveries), nil).Once()

	client, err := newClient(ch, "")
	require.NoError(t, err)

	ack := &acker{done: make(chan struct{}, 2)}
	require.NoError(t, client.Consume(func(msg amqp.Delivery) error {
		if msg.Type == "bad" {
			return errors.New("cannot handle")
		}
		return nil
	}))

	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Type: "contact.created"}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Type: "bad"}
	close(deliveries)

	for i := 0; i < 2; i++ {
		select {
		case <-ack.done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for acknowledgements")
		}
	}

	ack.mu.Lock()
	defer ack.mu.Unlock()
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
}

func TestClient_Close(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Close").Return(errors.New("already closed")).Once()

	client := &Client{channel: ch, queue: DefaultQueue}
	assert.ErrorContains(t, client.Close(), "failed to close channel")
	ch.AssertExpectations(t)
}
