package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ArticleEvent announces a persisted article to downstream consumers.
type ArticleEvent struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Title       string    `json:"title"`
	CategoryKey string    `json:"category_key"`
	Date        string    `json:"date"`
	EmittedAt   time.Time `json:"emitted_at"`
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes ArticleEvents to a Kafka topic keyed by document id.
type Publisher struct {
	w MessageWriter
}

// NewPublisher connects a writer to brokers/topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{w: kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		MaxAttempts: 3,
	})}
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{w: w}
}

// Publish encodes and writes one event.
func (p *Publisher) Publish(ctx context.Context, ev ArticleEvent) error {
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(ev.RunID)},
			{Key: "type", Value: []byte("article.generated")},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
