package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQ publishes each event type to a durable queue of the same name
// through the default exchange.
type RabbitMQ struct {
	url string
	log *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitMQ(url string, log *zap.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{url: url, log: log.With(zap.String("publisher", "rabbitmq"))}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

// connect must be called with mu held or before the publisher is shared.
func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	for _, typ := range Types {
		if _, err := ch.QueueDeclare(string(typ), true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("rabbitmq declare %s: %w", typ, err)
		}
	}

	r.conn, r.ch = conn, ch
	return nil
}

func publishing(env Envelope) (amqp.Publishing, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.EventID.String(),
		CorrelationId: env.CorrelationID,
		Type:          string(env.EventType),
		Timestamp:     env.OccurredAt,
		AppId:         env.Producer,
		Body:          body,
	}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, env Envelope) error {
	msg, err := publishing(env)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch == nil || r.ch.IsClosed() {
		r.log.Warn("Channel closed, reconnecting")
		r.closeLocked()
		if err := r.connect(); err != nil {
			return err
		}
	}

	if err := r.ch.PublishWithContext(ctx, "", string(env.EventType), false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", env.EventType, err)
	}
	return nil
}

func (r *RabbitMQ) closeLocked() {
	if r.ch != nil {
		_ = r.ch.Close()
		r.ch = nil
	}
	if r.conn != nil {
		_ = r.conn.Close()
		r.conn = nil
	}
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
	return nil
}
