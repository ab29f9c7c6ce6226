package payment

import (
	"time"

	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/shared"
)

// GenerateSchedule derives the daily repayment schedule of d: term payments of
// round2(size*rate/term), the first dated on now's calendar date and each following
// one a day later. All payments start pending.
func GenerateSchedule(d *deal.Deal, now time.Time) []*Payment {
	daily := d.DailyPayment()
	start := shared.DateOf(now)
	stamp := now.UTC()

	schedule := make([]*Payment, d.Term)
	for i := 0; i < d.Term; i++ {
		schedule[i] = &Payment{
			DealID:    d.ID,
			Index:     i,
			Date:      start.AddDate(0, 0, i),
			Amount:    daily,
			Status:    StatusPending,
			Version:   1,
			UpdatedAt: stamp,
		}
	}
	return schedule
}
