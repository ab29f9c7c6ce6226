package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) Create(ctx context.Context, d *deal.Deal) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDealRepository) GetByID(ctx context.Context, id string) (*deal.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deal.Deal), args.Error(1)
}

func (m *MockDealRepository) List(ctx context.Context) ([]*deal.Deal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deal.Deal), args.Error(1)
}

func (m *MockDealRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateSchedule(ctx context.Context, dealID string, schedule []*payment.Payment) error {
	args := m.Called(ctx, dealID, schedule)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByDeal(ctx context.Context, dealID string) ([]*payment.Payment, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Get(ctx context.Context, dealID string, index int) (*payment.Payment, error) {
	args := m.Called(ctx, dealID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

// Update applies fn to a copy of the configured payment, like a real store would
func (m *MockPaymentRepository) Update(ctx context.Context, dealID string, index int, fn payment.MutateFunc) (*payment.Payment, error) {
	args := m.Called(ctx, dealID, index, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	p := args.Get(0).(*payment.Payment).Clone()
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, args.Error(1)
}

func (m *MockPaymentRepository) ListByStatus(ctx context.Context, statuses ...payment.Status) ([]*payment.Payment, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

type MockSyndicationRepository struct {
	mock.Mock
}

func (m *MockSyndicationRepository) Assign(ctx context.Context, allocation *syndication.Allocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

func (m *MockSyndicationRepository) Get(ctx context.Context, dealID string) (*syndication.Allocation, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syndication.Allocation), args.Error(1)
}

func (m *MockSyndicationRepository) List(ctx context.Context) ([]*syndication.Allocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syndication.Allocation), args.Error(1)
}

type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Add(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockParticipantRepository) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockParticipantRepository) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *shared.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// assignID mimics the registry stamping the next deal ID on Create
func assignID(id string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(1).(*deal.Deal).ID = id
	}
}

// eventOfType matches a published event by type
func eventOfType(eventType shared.EventType) interface{} {
	return mock.MatchedBy(func(e *shared.LedgerEvent) bool {
		return e.Type == eventType
	})
}
