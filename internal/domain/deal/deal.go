package deal

import (
	"fmt"
	"strings"
	"time"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// idBase is added to the sequence number when minting deal IDs (D101, D102, ...)
const idBase = 100

// Common errors
var (
	ErrEmptyName   = shared.ValidationError{Field: "name", Reason: "deal name cannot be empty"}
	ErrInvalidSize = shared.ValidationError{Field: "size", Reason: "deal size must be at least one cent"}
	ErrInvalidRate = shared.ValidationError{Field: "rate", Reason: "factor rate must be at least 1"}
	ErrInvalidTerm = shared.ValidationError{Field: "term", Reason: "term must be a positive number of daily payments"}
)

// Deal is a merchant cash advance: principal advanced at a factor rate, repaid in
// term equal daily payments. Deals are immutable once registered.
type Deal struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Size      decimal.Decimal `json:"size"` // principal advanced
	Rate      decimal.Decimal `json:"rate"` // factor rate, 1.45 means 45% total cost
	Term      int             `json:"term"` // number of daily payments
	CreatedAt time.Time       `json:"created_at"`
}

// NewDeal validates terms and returns an unregistered deal. The size is rounded to the
// cent first, so every store holds the same principal. The ID is assigned by the
// registry when the deal is stored.
func NewDeal(name string, size, rate decimal.Decimal, term int, now time.Time) (*Deal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	size = size.Round(2)
	if !size.IsPositive() {
		return nil, ErrInvalidSize
	}
	if rate.LessThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidRate
	}
	if term <= 0 {
		return nil, ErrInvalidTerm
	}

	return &Deal{
		Name:      name,
		Size:      size,
		Rate:      rate,
		Term:      term,
		CreatedAt: now.UTC(),
	}, nil
}

// TotalObligation is the face value the merchant repays: size x rate
func (d *Deal) TotalObligation() decimal.Decimal {
	return d.Size.Mul(d.Rate)
}

// DailyPayment is the scheduled amount per day, rounded half-up to the cent
func (d *Deal) DailyPayment() decimal.Decimal {
	return d.TotalObligation().Div(decimal.NewFromInt(int64(d.Term))).Round(2)
}

// FormatID renders the identifier for the deal registered when the registry already
// holds count deals.
func FormatID(count int) string {
	return fmt.Sprintf("D%d", idBase+count+1)
}
