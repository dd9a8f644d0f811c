package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles one message value. A returned error stops Run.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer reads a single topic.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		MinBytes: 1,
		MaxBytes: 1e6,
		MaxWait:  time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	rc := kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		MaxWait:  cfg.MaxWait,
	}
	reader := kafka.NewReader(rc)
	if cfg.GroupID == "" {
		if err := reader.SetOffset(kafka.LastOffset); err != nil {
			_ = reader.Close()
			return nil, fmt.Errorf("set offset: %w", err)
		}
	}

	return &Consumer{reader: reader}, nil
}

// Run delivers messages to h until ctx is cancelled or h fails.
func (c *Consumer) Run(ctx context.Context, h MessageHandler) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		if err := h(ctx, m.Key, m.Value); err != nil {
			return err
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
