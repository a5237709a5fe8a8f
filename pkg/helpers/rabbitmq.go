package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrPublisherClosed = errors.New("rabbitmq publisher closed")
	// ErrPublishNacked means the broker refused to take responsibility for
	// the message; it must be published again.
	ErrPublishNacked = errors.New("rabbitmq publish not confirmed")
)

// Confirmation is the broker's pending answer to one publish.
type Confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// publishChannel is a confirm-mode channel bound to a queue.
type publishChannel interface {
	Publish(ctx context.Context, msg amqp.Publishing) (Confirmation, error)
	IsClosed() bool
	Close() error
}

// RabbitPublisher publishes persistent messages to one queue with publisher
// confirms. A closed channel or connection is redialed on the next publish.
type RabbitPublisher struct {
	mu     sync.Mutex
	open   func() (publishChannel, error)
	ch     publishChannel
	closed bool
	Queue  string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	p := newRabbitPublisher(queue, func() (publishChannel, error) { return dialConfirmChannel(url, queue) })
	ch, err := p.open()
	if err != nil {
		return nil, err
	}
	p.ch = ch
	return p, nil
}

func newRabbitPublisher(queue string, open func() (publishChannel, error)) *RabbitPublisher {
	return &RabbitPublisher{open: open, Queue: queue}
}

// DeadLetterQueue names the queue that receives rejected messages of queue.
func DeadLetterQueue(queue string) string { return queue + ".dlq" }

// DeclareQueue opens a channel and declares a durable queue on it. Messages
// rejected without requeue are routed to DeadLetterQueue(queue).
func DeclareQueue(conn *amqp.Connection, queue string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	dlq := DeadLetterQueue(queue)
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlq,
		},
	)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}

// amqpConfirmChannel owns its connection so both are closed together.
type amqpConfirmChannel struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func dialConfirmChannel(url, queue string) (publishChannel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := DeclareQueue(conn, queue)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &amqpConfirmChannel{conn: conn, ch: ch, queue: queue}, nil
}

func (c *amqpConfirmChannel) Publish(ctx context.Context, msg amqp.Publishing) (Confirmation, error) {
	// default exchange, routing key = queue
	return c.ch.PublishWithDeferredConfirmWithContext(ctx, "", c.queue, false, false, msg)
}

func (c *amqpConfirmChannel) IsClosed() bool { return c.ch.IsClosed() || c.conn.IsClosed() }

func (c *amqpConfirmChannel) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
}

// channel returns a live channel, redialing when the previous one died.
func (p *RabbitPublisher) channel() (publishChannel, error) {
	if p.closed {
		return nil, ErrPublisherClosed
	}
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	ch, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq redial: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// PublishRaw publishes a persistent message and returns nil only once the
// broker has confirmed it.
func (p *RabbitPublisher) PublishRaw(ctx context.Context, messageID, contentType string, headers map[string]any, body []byte) error {
	if p == nil || p.open == nil {
		return errors.New("rabbitmq publisher not initialized")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	conf, err := ch.Publish(ctx, amqp.Publishing{
		MessageId:    messageID,
		Headers:      amqp.Table(headers),
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", messageID, err)
	}
	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("rabbitmq confirm %s: %w", messageID, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrPublishNacked, messageID)
	}
	return nil
}
