package handler

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/domain/audit"
	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/metrics"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/mca-deal-ledger/internal/mca_api/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	return r
}

// envelope decodes the standard response with the payload left raw
type envelope struct {
	Data          json.RawMessage `json:"data"`
	Error         *ErrorInfo      `json:"error"`
	CorrelationID string          `json:"correlation_id"`
	Meta          *MetaInfo       `json:"meta"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

type MockDealService struct {
	mock.Mock
}

func (m *MockDealService) AddDeal(ctx context.Context, name string, size, rate decimal.Decimal, term int) (*deal.Deal, error) {
	args := m.Called(ctx, name, size, rate, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deal.Deal), args.Error(1)
}

func (m *MockDealService) ListDeals(ctx context.Context) ([]*deal.Deal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deal.Deal), args.Error(1)
}

func (m *MockDealService) FindDeal(ctx context.Context, id string) (*deal.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deal.Deal), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ListPayments(ctx context.Context, dealID string) ([]*payment.Payment, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) SetStatus(ctx context.Context, dealID string, index int, status payment.Status) (*payment.Payment, error) {
	args := m.Called(ctx, dealID, index, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) Modify(ctx context.Context, dealID string, index int, amount decimal.Decimal, note string) (*payment.Payment, error) {
	args := m.Called(ctx, dealID, index, amount, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) Progress(ctx context.Context, dealID string) (float64, error) {
	args := m.Called(ctx, dealID)
	return args.Get(0).(float64), args.Error(1)
}

type MockSyndicationService struct {
	mock.Mock
}

func (m *MockSyndicationService) Assign(ctx context.Context, dealID string, shares map[string]decimal.Decimal) (*syndication.Allocation, error) {
	args := m.Called(ctx, dealID, shares)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syndication.Allocation), args.Error(1)
}

func (m *MockSyndicationService) DealAllocation(ctx context.Context, dealID string) (*syndication.Allocation, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syndication.Allocation), args.Error(1)
}

func (m *MockSyndicationService) DollarShare(ctx context.Context, dealID, participant string) (decimal.Decimal, error) {
	args := m.Called(ctx, dealID, participant)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSyndicationService) ListAllocations(ctx context.Context) ([]*syndication.Allocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syndication.Allocation), args.Error(1)
}

type MockParticipantService struct {
	mock.Mock
}

func (m *MockParticipantService) Register(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockParticipantService) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMetricsService struct {
	mock.Mock
}

func (m *MockMetricsService) Summary(ctx context.Context) (metrics.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).(metrics.Summary), args.Error(1)
}

func (m *MockMetricsService) DailyCollectionSeries(ctx context.Context, window int) (iter.Seq2[time.Time, decimal.Decimal], error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[time.Time, decimal.Decimal]), args.Error(1)
}

func (m *MockMetricsService) Distribution(ctx context.Context) ([]metrics.Slice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]metrics.Slice), args.Error(1)
}

func (m *MockMetricsService) Exposure(ctx context.Context) ([]metrics.Position, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]metrics.Position), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) DealTrail(ctx context.Context, dealID string, page, perPage int) ([]*audit.Record, int64, error) {
	args := m.Called(ctx, dealID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*audit.Record), args.Get(1).(int64), args.Error(2)
}

// decimalEq matches a decimal argument by value
func decimalEq(raw string) interface{} {
	want := decimal.RequireFromString(raw)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}
