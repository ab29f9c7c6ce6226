package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/participant"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type syndicationMocks struct {
	deals        *MockDealRepository
	participants *MockParticipantRepository
	allocations  *MockSyndicationRepository
	publisher    *MockEventPublisher
}

func newSyndicationService() (SyndicationService, *syndicationMocks) {
	m := &syndicationMocks{
		deals:        new(MockDealRepository),
		participants: new(MockParticipantRepository),
		allocations:  new(MockSyndicationRepository),
		publisher:    new(MockEventPublisher),
	}
	svc := NewSyndicationService(newTestLogger(), m.deals, m.participants, m.allocations, m.publisher, fixedClock)
	return svc, m
}

func pct(values map[string]int64) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal, len(values))
	for name, v := range values {
		shares[name] = decimal.NewFromInt(v)
	}
	return shares
}

var greenCafe = &deal.Deal{
	ID:   "D101",
	Name: "Green Cafe",
	Size: decimal.NewFromInt(30000),
	Rate: decimal.RequireFromString("1.49"),
	Term: 30,
}

func TestSyndicationServiceImpl_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, m := newSyndicationService()

		m.deals.On("GetByID", ctx, "D101").Return(greenCafe, nil).Once()
		m.participants.On("Exists", ctx, "albert").Return(true, nil).Once()
		m.participants.On("Exists", ctx, "jacobo").Return(true, nil).Once()
		m.allocations.On("Assign", ctx, mock.MatchedBy(func(a *syndication.Allocation) bool {
			return a.DealID == "D101" && len(a.Shares) == 2
		})).Return(nil).Once()
		m.publisher.On("Publish", ctx, mock.MatchedBy(func(e *shared.LedgerEvent) bool {
			return e.Type == shared.EventTypeSyndicationAssigned && e.Shares["jacobo"].Equal(decimal.NewFromInt(60))
		})).Return(nil).Once()

		allocation, err := svc.Assign(ctx, "D101", pct(map[string]int64{"Albert": 40, "jacobo": 60}))

		require.NoError(t, err)
		assert.True(t, allocation.Percentage("albert").Equal(decimal.NewFromInt(40)))
		m.allocations.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("SumNotHundred", func(t *testing.T) {
		svc, m := newSyndicationService()

		m.deals.On("GetByID", ctx, "D101").Return(greenCafe, nil).Once()

		_, err := svc.Assign(ctx, "D101", pct(map[string]int64{"albert": 40, "jacobo": 50}))

		assert.ErrorIs(t, err, shared.ErrConstraintViolation)
		m.allocations.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("PercentageOutOfRange", func(t *testing.T) {
		svc, m := newSyndicationService()

		m.deals.On("GetByID", ctx, "D101").Return(greenCafe, nil).Once()

		_, err := svc.Assign(ctx, "D101", pct(map[string]int64{"albert": 140, "jacobo": -40}))

		assert.ErrorIs(t, err, shared.ErrValidation)
		m.allocations.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything)
	})

	t.Run("UnknownParticipant", func(t *testing.T) {
		svc, m := newSyndicationService()

		m.deals.On("GetByID", ctx, "D101").Return(greenCafe, nil).Once()
		m.participants.On("Exists", ctx, "albert").Return(true, nil).Maybe()
		m.participants.On("Exists", ctx, "zoe").Return(false, nil).Once()
		m.participants.On("Exists", ctx, "yann").Return(false, nil).Once()

		_, err := svc.Assign(ctx, "D101", pct(map[string]int64{"albert": 50, "zoe": 25, "yann": 25}))

		var unknown participant.ErrUnknownParticipants
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, []string{"yann", "zoe"}, unknown.Names)
		assert.ErrorIs(t, err, shared.ErrValidation)
		m.allocations.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything)
	})

	t.Run("DealNotFound", func(t *testing.T) {
		svc, m := newSyndicationService()

		m.deals.On("GetByID", ctx, "D999").Return(nil, deal.ErrDealNotFound{DealID: "D999"}).Once()

		_, err := svc.Assign(ctx, "D999", pct(map[string]int64{"albert": 100}))

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("StoreError", func(t *testing.T) {
		svc, m := newSyndicationService()

		dbErr := errors.New("database error")
		m.deals.On("GetByID", ctx, "D101").Return(greenCafe, nil).Once()
		m.participants.On("Exists", ctx, "albert").Return(true, nil).Once()
		m.allocations.On("Assign", ctx, mock.Anything).Return(dbErr).Once()

		_, err := svc.Assign(ctx, "D101", pct(map[string]int64{"albert": 100}))

		assert.ErrorIs(t, err, dbErr)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestSyndicationServiceImpl_DollarShare(t *testing.T) {
	ctx := context.Background()
	allocation := &syndication.Allocation{DealID: "D101", Shares: pct(map[string]int64{"albert": 40, "jacobo": 60})}

	t.Run("Shares", func(t *testing.T) {
		svc, m := newSyndicationService()

		m.deals.On("GetByID", ctx, "D101").Return(greenCafe, nil)
		m.allocations.On("Get", ctx, "D101").Return(allocation, nil)

		albert, err := svc.DollarShare(ctx, "D101", "albert")
		require.NoError(t, err)
		jacobo, err := svc.DollarShare(ctx, "D101", "JACOBO")
		require.NoError(t, err)
		nobody, err := svc.DollarShare(ctx, "D101", "matty")
		require.NoError(t, err)

		assert.True(t, albert.Equal(decimal.NewFromInt(12000)))
		assert.True(t, jacobo.Equal(decimal.NewFromInt(18000)))
		assert.True(t, nobody.IsZero())
	})

	t.Run("NoAllocation", func(t *testing.T) {
		svc, m := newSyndicationService()

		m.deals.On("GetByID", ctx, "D101").Return(greenCafe, nil).Once()
		m.allocations.On("Get", ctx, "D101").Return(nil, nil).Once()

		share, err := svc.DollarShare(ctx, "D101", "albert")

		require.NoError(t, err)
		assert.True(t, share.IsZero())
	})
}

func TestSyndicationServiceImpl_DealAllocation(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyndicationService()

	m.deals.On("GetByID", ctx, "D101").Return(greenCafe, nil).Once()
	m.allocations.On("Get", ctx, "D101").Return(nil, nil).Once()

	allocation, err := svc.DealAllocation(ctx, "D101")

	require.NoError(t, err)
	assert.Equal(t, "D101", allocation.DealID)
	assert.Empty(t, allocation.Shares)
}
