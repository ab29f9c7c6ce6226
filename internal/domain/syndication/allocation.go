package syndication

import (
	"fmt"
	"strings"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// sumTolerance bounds the gap between the share total and 100
	sumTolerance = decimal.New(1, -9)
)

// ErrEmptyParticipant rejects a share keyed by a blank name
var ErrEmptyParticipant = shared.ValidationError{Field: "participant", Reason: "participant name cannot be empty"}

// Allocation is a deal's fractional ownership: participant name to percentage of the deal.
// Entries are unordered and every stored percentage is in (0, 100].
type Allocation struct {
	DealID string                     `json:"deal_id"`
	Shares map[string]decimal.Decimal `json:"shares"`
}

// NewAllocation validates shares and builds the allocation that would replace the deal's
// current one. Each percentage must lie in [0, 100] and the total must equal 100 within
// sumTolerance. Zero entries are accepted but dropped.
func NewAllocation(dealID string, shares map[string]decimal.Decimal) (*Allocation, error) {
	total := decimal.Zero
	kept := make(map[string]decimal.Decimal, len(shares))

	for name, pct := range shares {
		participant := strings.ToLower(strings.TrimSpace(name))
		if participant == "" {
			return nil, ErrEmptyParticipant
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return nil, shared.ValidationError{
				Field:  "shares." + participant,
				Reason: fmt.Sprintf("percentage %s outside [0, 100]", pct.String()),
			}
		}
		total = total.Add(pct)
		if pct.IsZero() {
			continue
		}
		kept[participant] = kept[participant].Add(pct)
	}

	if total.Sub(hundred).Abs().GreaterThan(sumTolerance) {
		return nil, ErrAllocationTotal{DealID: dealID, Total: total}
	}

	return &Allocation{DealID: dealID, Shares: kept}, nil
}

// Percentage returns the participant's share, zero when it holds none
func (a *Allocation) Percentage(participant string) decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	return a.Shares[strings.ToLower(strings.TrimSpace(participant))]
}

// Participants returns the names holding a share
func (a *Allocation) Participants() []string {
	names := make([]string, 0, len(a.Shares))
	for name := range a.Shares {
		names = append(names, name)
	}
	return names
}

// DollarShare converts a percentage of size into an amount: size * pct / 100
func DollarShare(size, pct decimal.Decimal) decimal.Decimal {
	return size.Mul(pct).Div(hundred)
}

// ErrAllocationTotal reports shares that do not add up to 100 percent
type ErrAllocationTotal struct {
	DealID string
	Total  decimal.Decimal
}

func (e ErrAllocationTotal) Error() string {
	return fmt.Sprintf("syndication shares for deal %s total %s%%, expected 100%%", e.DealID, e.Total.String())
}

// Is implements the errors.Is interface for ErrAllocationTotal
func (e ErrAllocationTotal) Is(target error) bool {
	if target == shared.ErrConstraintViolation {
		return true
	}
	_, ok := target.(ErrAllocationTotal)
	return ok
}
