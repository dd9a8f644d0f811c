package repository

import (
	"context"

	json "github.com/goccy/go-json"

	"ecogw/internal/domain/models"
	"ecogw/internal/domain/repository"
)

// Producer is the subset of pkg/kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher implements Publisher for Kafka. Windows are keyed by job so
// one provider's windows stay ordered on a single partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishWindow(ctx context.Context, w models.SignalWindow) error {
	b, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, p.topic, []byte(w.Job), b)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// DecodeWindow parses a published window, for consumers of the topic.
func DecodeWindow(b []byte) (models.SignalWindow, error) {
	var w models.SignalWindow
	err := json.Unmarshal(b, &w)
	return w, err
}
