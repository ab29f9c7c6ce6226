package producers

import (
	"context"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// EventPublisher emits committed ledger mutations
type EventPublisher interface {
	Publish(ctx context.Context, event *shared.LedgerEvent) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
