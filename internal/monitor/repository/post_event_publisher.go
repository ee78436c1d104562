package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-tracker/internal/monitor/dto"

	"github.com/segmentio/kafka-go"
)

// PostEventPublisher announces post status changes to downstream consumers (feeds, bots).
type PostEventPublisher interface {
	Publish(ctx context.Context, events []dto.PostStatusEvent) error
	Close() error
}

type kafkaPostEventPublisher struct {
	writer *kafka.Writer
}

// NewPostEventPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func NewPostEventPublisher(brokers []string, topic string) PostEventPublisher {
	if len(brokers) == 0 {
		return noopPostEventPublisher{}
	}
	return &kafkaPostEventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *kafkaPostEventPublisher) Publish(ctx context.Context, events []dto.PostStatusEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(event.Symbol), Value: data})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *kafkaPostEventPublisher) Close() error {
	return p.writer.Close()
}

type noopPostEventPublisher struct{}

func (noopPostEventPublisher) Publish(context.Context, []dto.PostStatusEvent) error { return nil }

func (noopPostEventPublisher) Close() error { return nil }
