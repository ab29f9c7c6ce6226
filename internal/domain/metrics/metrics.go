// Package metrics folds deals, payments and allocations into portfolio figures.
// Nothing here is cached: callers pass fresh snapshots on every read.
package metrics

import (
	"iter"
	"sort"
	"time"

	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/shopspring/decimal"
)

// Summary is the portfolio headline
type Summary struct {
	DealCount               int             `json:"deal_count"`
	TotalDealSize           decimal.Decimal `json:"total_deal_size"`
	TotalExpectedCollection decimal.Decimal `json:"total_expected_collection"`
	TotalCollected          decimal.Decimal `json:"total_collected"`
	MissedCount             int             `json:"missed_count"`
}

// Summarize folds deals and payments. Only paid payments count as collected.
func Summarize(deals []*deal.Deal, payments []*payment.Payment) Summary {
	s := Summary{
		DealCount:               len(deals),
		TotalDealSize:           decimal.Zero,
		TotalExpectedCollection: decimal.Zero,
		TotalCollected:          decimal.Zero,
	}

	for _, d := range deals {
		s.TotalDealSize = s.TotalDealSize.Add(d.Size)
		s.TotalExpectedCollection = s.TotalExpectedCollection.Add(d.TotalObligation())
	}

	for _, p := range payments {
		switch p.Status {
		case payment.StatusPaid:
			s.TotalCollected = s.TotalCollected.Add(p.Amount)
		case payment.StatusMissed:
			s.MissedCount++
		}
	}

	return s
}

// DailyCollections yields (date, collected) for the window calendar days ending on
// today's date, oldest first, with zero for days without paid payments. Payments are
// bucketed by schedule date. The sequence can be ranged over any number of times.
func DailyCollections(payments []*payment.Payment, today time.Time, window int) iter.Seq2[time.Time, decimal.Decimal] {
	end := shared.DateOf(today)

	return func(yield func(time.Time, decimal.Decimal) bool) {
		if window <= 0 {
			return
		}

		start := end.AddDate(0, 0, -(window - 1))
		byDate := make(map[time.Time]decimal.Decimal)
		for _, p := range payments {
			if p.Status != payment.StatusPaid {
				continue
			}
			day := shared.DateOf(p.Date)
			if day.Before(start) || day.After(end) {
				continue
			}
			byDate[day] = byDate[day].Add(p.Amount)
		}

		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			if !yield(day, byDate[day]) {
				return
			}
		}
	}
}

// Slice is one deal's portion of the book
type Slice struct {
	DealID  string          `json:"deal_id"`
	Name    string          `json:"name"`
	Size    decimal.Decimal `json:"size"`
	Percent decimal.Decimal `json:"percent"`
}

// Distribution splits total deal size across deals in registry order. Percent is
// rounded to two places.
func Distribution(deals []*deal.Deal) []Slice {
	total := decimal.Zero
	for _, d := range deals {
		total = total.Add(d.Size)
	}

	slices := make([]Slice, 0, len(deals))
	for _, d := range deals {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = d.Size.Mul(decimal.NewFromInt(100)).Div(total).Round(2)
		}
		slices = append(slices, Slice{DealID: d.ID, Name: d.Name, Size: d.Size, Percent: pct})
	}
	return slices
}

// Position is a participant's dollar exposure across the book
type Position struct {
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
	Deals       int             `json:"deals"`
}

// Exposure sums each participant's dollar share over every allocated deal, sorted by
// participant name. Allocations of unknown deals are skipped.
func Exposure(deals []*deal.Deal, allocations []*syndication.Allocation) []Position {
	sizes := make(map[string]decimal.Decimal, len(deals))
	for _, d := range deals {
		sizes[d.ID] = d.Size
	}

	byParticipant := make(map[string]*Position)
	for _, a := range allocations {
		size, ok := sizes[a.DealID]
		if !ok {
			continue
		}
		for name, pct := range a.Shares {
			pos, ok := byParticipant[name]
			if !ok {
				pos = &Position{Participant: name, Amount: decimal.Zero}
				byParticipant[name] = pos
			}
			pos.Amount = pos.Amount.Add(syndication.DollarShare(size, pct))
			pos.Deals++
		}
	}

	positions := make([]Position, 0, len(byParticipant))
	for _, pos := range byParticipant {
		positions = append(positions, *pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Participant < positions[j].Participant
	})
	return positions
}
