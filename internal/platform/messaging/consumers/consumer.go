package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mca-deal-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. A returned error leaves the offset uncommitted.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// KafkaReader wraps kafka.Reader methods for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads one topic as part of a consumer group
type KafkaConsumer struct {
	reader       KafkaReader
	logger       *slog.Logger
	topic        string
	groupID      string
	fetchBackoff time.Duration
}

// NewKafkaConsumer subscribes to the ledger topic with the configured group
func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	return &KafkaConsumer{
		logger:  logger,
		topic:   cfg.LedgerTopic,
		groupID: cfg.ConsumerGroup,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.BrokerList(),
			Topic:       cfg.LedgerTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
		fetchBackoff: time.Second,
	}
}

// Consume fetches messages and hands them to handler until ctx is cancelled.
// A failed message is retried with backoff before the next one is fetched, and
// offsets are committed only after handler succeeds, so no later commit can skip it.
func (c *KafkaConsumer) Consume(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Consuming Kafka topic", "topic", c.topic, "group_id", c.groupID)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return nil
			}
			c.logger.Error("Failed to fetch message from Kafka", "topic", c.topic, "error", err)

			if !c.wait(ctx) {
				return nil
			}
			continue
		}

		c.logger.Debug("Received message from Kafka",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)

		if !c.handleUntilDone(ctx, handler, msg) {
			c.logger.Info("Context canceled before message was handled, offset left uncommitted",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message after successful processing",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// handleUntilDone runs handler on msg until it succeeds. It reports false when ctx
// is cancelled first.
func (c *KafkaConsumer) handleUntilDone(ctx context.Context, handler MessageHandler, msg kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return true
		}

		c.logger.Error("Failed to process message, retrying",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"attempt", attempt,
			"error", err,
		)

		if !c.wait(ctx) {
			return false
		}
	}
}

func (c *KafkaConsumer) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.fetchBackoff):
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
