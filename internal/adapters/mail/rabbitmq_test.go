package mail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SscSPs/inkpress/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type recordingAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (r *recordingAck) Ack(tag uint64, multiple bool) error {
	r.acked = true
	return nil
}

func (r *recordingAck) Nack(tag uint64, multiple, requeue bool) error {
	r.nacked, r.requeue = true, requeue
	return nil
}

func (r *recordingAck) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func delivery(t *testing.T, ack amqp.Acknowledger, msg any, redelivered bool) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}
}

func TestHandleDelivery_Sends(t *testing.T) {
	msg := domain.EmailMessage{To: "a@example.com", Subject: "Hi", Text: "hello"}
	sender := new(MockMailer)
	sender.On("Send", mock.Anything, msg).Return(nil).Once()
	ack := &recordingAck{}

	handleDelivery(context.Background(), delivery(t, ack, msg, false), sender, discard)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	sender.AssertExpectations(t)
}

func TestHandleDelivery_MalformedIsDropped(t *testing.T) {
	sender := new(MockMailer)
	ack := &recordingAck{}

	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{nope")}, sender, discard)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleDelivery_MissingRecipientIsDropped(t *testing.T) {
	sender := new(MockMailer)
	ack := &recordingAck{}

	handleDelivery(context.Background(), delivery(t, ack, domain.EmailMessage{Subject: "x"}, false), sender, discard)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleDelivery_FailureRequeuesOnce(t *testing.T) {
	msg := domain.EmailMessage{To: "a@example.com", Subject: "Hi"}
	sender := new(MockMailer)
	sender.On("Send", mock.Anything, msg).Return(errors.New("smtp down"))

	first := &recordingAck{}
	handleDelivery(context.Background(), delivery(t, first, msg, false), sender, discard)
	assert.True(t, first.nacked)
	assert.True(t, first.requeue)

	second := &recordingAck{}
	handleDelivery(context.Background(), delivery(t, second, msg, true), sender, discard)
	assert.True(t, second.nacked)
	assert.False(t, second.requeue)
}

func TestSortedTagValues(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, sortedTagValues(map[string]string{"b": "y", "a": "x"}))
	assert.Empty(t, sortedTagValues(nil))
}

func TestLogMailer_NeverFails(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), domain.EmailMessage{To: "a@example.com"}))
}
