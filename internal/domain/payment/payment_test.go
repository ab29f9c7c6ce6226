package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingPayment(amount string) *Payment {
	return &Payment{
		DealID:  "D101",
		Index:   3,
		Date:    time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString(amount),
		Status:  StatusPending,
		Version: 1,
	}
}

func TestParseStatus(t *testing.T) {
	t.Run("KnownStatuses", func(t *testing.T) {
		for raw, expected := range map[string]Status{
			"pending":  StatusPending,
			"PAID":     StatusPaid,
			" missed ": StatusMissed,
			"Modified": StatusModified,
		} {
			s, err := ParseStatus(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, expected, s)
		}
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		_, err := ParseStatus("refunded")
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestPayment_SetStatus(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("AnyTransitionAllowed", func(t *testing.T) {
		p := newPendingPayment("1490")
		sequence := []Status{StatusPaid, StatusMissed, StatusPending, StatusModified, StatusPaid}
		for _, s := range sequence {
			require.NoError(t, p.SetStatus(s, now))
			assert.Equal(t, s, p.Status)
		}
		assert.Equal(t, 1+len(sequence), p.Version)
		assert.Equal(t, now, p.UpdatedAt)
	})

	t.Run("PreservesAuditFields", func(t *testing.T) {
		p := newPendingPayment("1490")
		require.NoError(t, p.Modify(decimal.NewFromInt(1000), "partial", now))

		require.NoError(t, p.SetStatus(StatusPaid, now))

		assert.Equal(t, StatusPaid, p.Status)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(1000)))
		require.NotNil(t, p.OriginalAmount)
		assert.True(t, p.OriginalAmount.Equal(decimal.NewFromInt(1490)))
		assert.Equal(t, "partial", p.ModificationNote)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		p := newPendingPayment("1490")
		err := p.SetStatus(Status("void"), now)

		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Equal(t, StatusPending, p.Status, "Status should be unchanged")
		assert.Equal(t, 1, p.Version, "Version should be unchanged")
	})
}

func TestPayment_Modify(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("FirstModificationCapturesOriginal", func(t *testing.T) {
		p := newPendingPayment("1490")

		require.NoError(t, p.Modify(decimal.NewFromInt(1000), "merchant short", now))

		assert.Equal(t, StatusModified, p.Status)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(1000)))
		require.NotNil(t, p.OriginalAmount)
		assert.True(t, p.OriginalAmount.Equal(decimal.NewFromInt(1490)))
		assert.Equal(t, "merchant short", p.ModificationNote)
		assert.True(t, p.IsModified())
		assert.Equal(t, 2, p.Version)
	})

	t.Run("SecondModificationKeepsFirstBaseline", func(t *testing.T) {
		p := newPendingPayment("1490")

		require.NoError(t, p.Modify(decimal.NewFromInt(1000), "first", now))
		require.NoError(t, p.Modify(decimal.NewFromInt(800), "second", now))

		assert.True(t, p.Amount.Equal(decimal.NewFromInt(800)))
		require.NotNil(t, p.OriginalAmount)
		assert.True(t, p.OriginalAmount.Equal(decimal.NewFromInt(1490)), "OriginalAmount must never be overwritten")
		assert.Equal(t, "second", p.ModificationNote)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
			p := newPendingPayment("1490")
			err := p.Modify(amount, "bad", now)

			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Equal(t, StatusPending, p.Status)
			assert.Nil(t, p.OriginalAmount)
			assert.True(t, p.Amount.Equal(decimal.NewFromInt(1490)))
		}
	})
}

func TestPayment_Clone(t *testing.T) {
	p := newPendingPayment("1490")
	require.NoError(t, p.Modify(decimal.NewFromInt(1000), "note", time.Now()))

	c := p.Clone()
	require.NoError(t, c.Modify(decimal.NewFromInt(10), "other", time.Now()))
	*c.OriginalAmount = decimal.NewFromInt(1)

	assert.True(t, p.Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, p.OriginalAmount.Equal(decimal.NewFromInt(1490)))
	assert.Equal(t, "note", p.ModificationNote)
}

func TestProgress(t *testing.T) {
	t.Run("EmptySchedule", func(t *testing.T) {
		assert.Equal(t, 0.0, Progress(nil))
	})

	t.Run("MonotoneToOne", func(t *testing.T) {
		payments := make([]*Payment, 4)
		for i := range payments {
			payments[i] = newPendingPayment("100")
		}
		assert.Equal(t, 0.0, Progress(payments))

		last := 0.0
		for _, p := range payments {
			require.NoError(t, p.SetStatus(StatusPaid, time.Now()))
			current := Progress(payments)
			assert.Greater(t, current, last)
			last = current
		}
		assert.Equal(t, 1.0, last)
	})

	t.Run("OnlyPaidCounts", func(t *testing.T) {
		payments := []*Payment{
			{Status: StatusPaid},
			{Status: StatusMissed},
			{Status: StatusModified},
			{Status: StatusPending},
		}
		assert.Equal(t, 0.25, Progress(payments))
	})
}

func TestErrPaymentNotFound_Is(t *testing.T) {
	err := ErrPaymentNotFound{DealID: "D101", Index: 40}

	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.True(t, errors.Is(err, ErrPaymentNotFound{}))
	assert.True(t, errors.Is(err, ErrPaymentNotFound{DealID: "D101", Index: 40}))
	assert.False(t, errors.Is(err, ErrPaymentNotFound{DealID: "D101", Index: 2}))
	assert.False(t, errors.Is(err, shared.ErrValidation))
	assert.True(t, errors.Is(ErrLedgerNotFound{DealID: "D999"}, shared.ErrNotFound))
}
