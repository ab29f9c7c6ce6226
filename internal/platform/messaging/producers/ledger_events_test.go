package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKafkaWriter mocks KafkaWriter interface
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestLedgerEventProducer_Publish(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	t.Run("KeyedByDealWithHeaders", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &LedgerEventProducer{logger: logger, writer: mockWriter, topic: "ledger_events"}

		amount := decimal.RequireFromString("1490.00")
		event := shared.NewLedgerEvent(shared.EventTypePaymentModified, "D101", time.Now())
		event.Amount = &amount
		event.CorrelationID = "corr-9"

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			var decoded shared.LedgerEvent
			if err := json.Unmarshal(msg.Value, &decoded); err != nil {
				return false
			}
			return string(msg.Key) == "D101" &&
				headerValue(msg, HeaderEventType) == "payment.modified" &&
				headerValue(msg, HeaderCorrelationID) == "corr-9" &&
				decoded.EventID == event.EventID &&
				decoded.Amount != nil && decoded.Amount.Equal(amount)
		})).Return(nil).Once()

		require.NoError(t, producer.Publish(ctx, event))
		mockWriter.AssertExpectations(t)
	})

	t.Run("NoCorrelationHeaderWhenEmpty", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &LedgerEventProducer{logger: logger, writer: mockWriter, topic: "ledger_events"}
		event := shared.NewLedgerEvent(shared.EventTypeParticipantAdded, "", time.Now())
		event.Participant = "albert"

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 &&
				len(msgs[0].Headers) == 1 &&
				string(msgs[0].Key) == event.EventID.String()
		})).Return(nil).Once()

		require.NoError(t, producer.Publish(ctx, event))
		mockWriter.AssertExpectations(t)
	})

	t.Run("WriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &LedgerEventProducer{logger: logger, writer: mockWriter, topic: "ledger_events"}
		writerErr := errors.New("broker unavailable")

		mockWriter.On("WriteMessages", ctx, mock.Anything).Return(writerErr).Once()

		err := producer.Publish(ctx, shared.NewLedgerEvent(shared.EventTypeDealCreated, "D101", time.Now()))
		assert.ErrorIs(t, err, writerErr)
		assert.Contains(t, err.Error(), "failed to publish ledger event to ledger_events")
	})

	t.Run("Close", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &LedgerEventProducer{logger: logger, writer: mockWriter, topic: "ledger_events"}
		mockWriter.On("Close").Return(nil).Once()

		require.NoError(t, producer.Close())
		mockWriter.AssertExpectations(t)
	})
}

func TestNoopPublisher(t *testing.T) {
	var p EventPublisher = NoopPublisher{}

	assert.NoError(t, p.Publish(context.Background(), shared.NewLedgerEvent(shared.EventTypeDealCreated, "D101", time.Now())))
	assert.NoError(t, p.Close())
}
