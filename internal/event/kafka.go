package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	ErrBufferFull = errors.New("event buffer full")
	ErrClosed     = errors.New("publisher closed")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka queues events in memory and writes them to one topic from a
// background loop, keyed by booking id so a booking's events stay ordered.
type Kafka struct {
	w     messageWriter
	log   *zap.Logger
	inbox chan kafka.Message

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewKafka(brokers []string, topic string, buf int, log *zap.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return newKafka(w, buf, log)
}

func newKafka(w messageWriter, buf int, log *zap.Logger) *Kafka {
	k := &Kafka{
		w:     w,
		log:   log.With(zap.String("publisher", "kafka")),
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
	go k.loop()
	return k
}

func (k *Kafka) loop() {
	defer close(k.done)
	for m := range k.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := k.w.WriteMessages(ctx, m); err != nil {
			k.log.Error("Failed to write event",
				zap.Error(err),
				zap.String("key", string(m.Key)),
			)
		}
		cancel()
	}
}

func (k *Kafka) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(env.Payload.BookingID.String()),
		Value: body,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID.String())},
		},
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrClosed
	}

	select {
	case k.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Close flushes queued events and closes the writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if !k.closed {
		k.closed = true
		close(k.inbox)
	}
	k.mu.Unlock()

	<-k.done
	return k.w.Close()
}
