package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"extmedia/internal/logger"

	"github.com/segmentio/kafka-go"
)

type Type string

const (
	TypeSyncCompleted Type = "media.sync.completed"
	TypeSyncFailed    Type = "media.sync.failed"
)

// SyncEvent announces the end of one media sync run.
type SyncEvent struct {
	Type       Type        `json:"type"`
	RunID      string      `json:"run_id"`
	Source     string      `json:"source"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event SyncEvent) error
	Close() error
}

// KafkaPublisher writes events to a single topic, keyed by run id.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event SyncEvent) error {
	value, err := Encode(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RunID),
		Value: value,
		Time:  event.FinishedAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Published %s for run %s", event.Type, event.RunID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Encode serializes an event the way it is written to the topic.
func Encode(event SyncEvent) ([]byte, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return value, nil
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, SyncEvent) error { return nil }
func (NopPublisher) Close() error                             { return nil }
