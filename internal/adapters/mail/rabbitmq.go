package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	amqp "github.com/rabbitmq/amqp091-go"
)

// QueuePublisher hands emails to a durable RabbitMQ queue; cmd/mail_worker sends them.
type QueuePublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewQueuePublisher(url, queue string) (*QueuePublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := declareQueue(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &QueuePublisher{conn: conn, ch: ch, queue: queue}, nil
}

var _ portssvc.Mailer = (*QueuePublisher)(nil)

func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare %s: %w", queue, err)
	}
	return nil
}

func (p *QueuePublisher) Send(ctx context.Context, msg domain.EmailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish email to %s: %w", p.queue, err)
	}
	return nil
}

func (p *QueuePublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// QueueConsumer drains the email queue into a Mailer.
type QueueConsumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	queue    string
	sender   portssvc.Mailer
	logger   *slog.Logger
	prefetch int
}

func NewQueueConsumer(url, queue string, sender portssvc.Mailer, logger *slog.Logger) (*QueueConsumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	c := &QueueConsumer{conn: conn, ch: ch, queue: queue, sender: sender, logger: logger, prefetch: 16}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.Close()
		return nil, fmt.Errorf("qos: %w", err)
	}
	if err := declareQueue(ch, queue); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Run consumes until ctx is cancelled or the delivery channel closes.
func (c *QueueConsumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.Info("Mail worker listening", slog.String("queue", c.queue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			handleDelivery(ctx, d, c.sender, c.logger)
		}
	}
}

func (c *QueueConsumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// handleDelivery sends one queued email. Undecodable messages are dropped;
// send failures are requeued once and dropped on redelivery.
func handleDelivery(ctx context.Context, d amqp.Delivery, sender portssvc.Mailer, logger *slog.Logger) {
	var msg domain.EmailMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.To == "" {
		logger.Error("Dropping malformed email message", slog.Any("error", err))
		_ = d.Nack(false, false)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := sender.Send(sendCtx, msg); err != nil {
		logger.Error("Failed to send email", slog.String("to", msg.To), slog.Bool("redelivered", d.Redelivered), slog.String("error", err.Error()))
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	logger.Info("Email sent", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	_ = d.Ack(false)
}
