package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mca-deal-ledger/internal/config"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// Message headers set on every ledger event
const (
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
)

// LedgerEventProducer writes ledger events keyed by deal ID, so one deal's events
// land on one partition in order.
type LedgerEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewLedgerEventProducer ensures the ledger topic exists and opens a synchronous writer
func NewLedgerEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*LedgerEventProducer, error) {
	if cfg.LedgerTopic == "" {
		return nil, fmt.Errorf("kafka ledger topic is not configured")
	}

	if err := ensureTopic(ctx, cfg, cfg.LedgerTopic, logger); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.LedgerTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &LedgerEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.LedgerTopic,
	}, nil
}

func (p *LedgerEventProducer) Publish(ctx context.Context, event *shared.LedgerEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	headers := []kafka.Header{{Key: HeaderEventType, Value: []byte(event.Type)}}
	if event.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: HeaderCorrelationID, Value: []byte(event.CorrelationID)})
	}

	msg := kafka.Message{
		Key:     []byte(event.Key()),
		Value:   value,
		Headers: headers,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"event_id", event.EventID.String(),
			"type", string(event.Type),
			"error", err,
		)
		return fmt.Errorf("failed to publish ledger event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published ledger event",
		"topic", p.topic,
		"event_id", event.EventID.String(),
		"type", string(event.Type),
		"deal_id", event.DealID,
	)
	return nil
}

func (p *LedgerEventProducer) Close() error {
	p.logger.Info("Closing ledger event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

// NoopPublisher drops events; used when Kafka is disabled
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *shared.LedgerEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
