package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParticipantServiceImpl_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("NewParticipant", func(t *testing.T) {
		repo := new(MockParticipantRepository)
		publisher := new(MockEventPublisher)
		svc := NewParticipantService(newTestLogger(), repo, publisher, fixedClock)

		repo.On("Exists", ctx, "albert").Return(false, nil).Once()
		repo.On("Add", ctx, "albert").Return(nil).Once()
		publisher.On("Publish", ctx, mock.MatchedBy(func(e *shared.LedgerEvent) bool {
			return e.Type == shared.EventTypeParticipantAdded && e.Participant == "albert" && e.DealID == ""
		})).Return(nil).Once()

		name, err := svc.Register(ctx, "  Albert ")

		require.NoError(t, err)
		assert.Equal(t, "albert", name)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("AlreadyRegistered", func(t *testing.T) {
		repo := new(MockParticipantRepository)
		publisher := new(MockEventPublisher)
		svc := NewParticipantService(newTestLogger(), repo, publisher, fixedClock)

		repo.On("Exists", ctx, "albert").Return(true, nil).Once()

		name, err := svc.Register(ctx, "ALBERT")

		require.NoError(t, err)
		assert.Equal(t, "albert", name)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("EmptyName", func(t *testing.T) {
		repo := new(MockParticipantRepository)
		svc := NewParticipantService(newTestLogger(), repo, new(MockEventPublisher), fixedClock)

		_, err := svc.Register(ctx, "   ")

		assert.ErrorIs(t, err, shared.ErrValidation)
		repo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})

	t.Run("StoreError", func(t *testing.T) {
		repo := new(MockParticipantRepository)
		svc := NewParticipantService(newTestLogger(), repo, new(MockEventPublisher), fixedClock)

		dbErr := errors.New("database error")
		repo.On("Exists", ctx, "albert").Return(false, nil).Once()
		repo.On("Add", ctx, "albert").Return(dbErr).Once()

		_, err := svc.Register(ctx, "albert")

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestParticipantServiceImpl_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockParticipantRepository)
	svc := NewParticipantService(newTestLogger(), repo, new(MockEventPublisher), fixedClock)

	repo.On("List", ctx).Return([]string{"albert", "jacobo"}, nil).Once()

	names, err := svc.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"albert", "jacobo"}, names)
}
