package handler

import (
	"math"
	"sort"
	"time"

	"github.com/mca-deal-ledger/internal/domain/audit"
	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/shopspring/decimal"
)

// CreateParticipantRequest represents a request to register a participant
type CreateParticipantRequest struct {
	Name string `json:"name" binding:"required"`
}

// ParticipantResponse represents a participant in API responses
type ParticipantResponse struct {
	Name string `json:"name"`
}

// ParticipantListResponse represents the participant registry
type ParticipantListResponse struct {
	Participants []string `json:"participants"`
}

// CreateDealRequest represents a request to register a deal. Amounts accept JSON
// numbers or strings.
type CreateDealRequest struct {
	Name string          `json:"name" binding:"required"`
	Size decimal.Decimal `json:"size"`
	Rate decimal.Decimal `json:"rate"`
	Term int             `json:"term"`
}

// DealResponse represents a deal in API responses
type DealResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Size            decimal.Decimal `json:"size"`
	Rate            decimal.Decimal `json:"rate"`
	Term            int             `json:"term"`
	TotalObligation decimal.Decimal `json:"total_obligation"`
	DailyPayment    decimal.Decimal `json:"daily_payment"`
	CreatedAt       string          `json:"created_at"`
}

// DealListResponse represents a list of deals in API responses
type DealListResponse struct {
	Deals []DealResponse `json:"deals"`
}

// PaymentResponse represents a scheduled payment in API responses
type PaymentResponse struct {
	DealID           string           `json:"deal_id"`
	Index            int              `json:"index"`
	Date             string           `json:"date"`
	Amount           decimal.Decimal  `json:"amount"`
	Status           string           `json:"status"`
	Modified         bool             `json:"modified"` // true once the amount has been changed, whatever the status
	OriginalAmount   *decimal.Decimal `json:"original_amount,omitempty"`
	ModificationNote string           `json:"modification_note,omitempty"`
	UpdatedAt        string           `json:"updated_at"`
}

// PaymentListResponse represents a deal's schedule in API responses
type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// UpdatePaymentStatusRequest represents a status change
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ModifyPaymentRequest represents an amount modification
type ModifyPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" binding:"max=500"`
}

// ProgressResponse reports paid / total, also as a whole percentage
type ProgressResponse struct {
	DealID   string  `json:"deal_id"`
	Fraction float64 `json:"fraction"`
	Percent  int     `json:"percent"`
}

// AssignSyndicationRequest maps participant names to percentages of the deal
type AssignSyndicationRequest struct {
	Shares map[string]decimal.Decimal `json:"shares" binding:"required"`
}

// ShareResponse is one participant's slice of a deal
type ShareResponse struct {
	Participant string           `json:"participant"`
	Percentage  decimal.Decimal  `json:"percentage"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// AllocationResponse represents a deal's syndication, shares sorted by participant
type AllocationResponse struct {
	DealID string          `json:"deal_id"`
	Shares []ShareResponse `json:"shares"`
}

// AllocationListResponse represents every stored allocation
type AllocationListResponse struct {
	Syndications []AllocationResponse `json:"syndications"`
}

// DollarShareResponse represents a participant's dollar share of a deal
type DollarShareResponse struct {
	DealID      string          `json:"deal_id"`
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

// DailyCollectionResponse is one point of the daily collection series
type DailyCollectionResponse struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// DailyCollectionsResponse represents the daily collection series
type DailyCollectionsResponse struct {
	Window int                       `json:"window"`
	Series []DailyCollectionResponse `json:"series"`
}

// DailyCollectionsParams holds the series query; a zero window means the configured default
type DailyCollectionsParams struct {
	Window int `form:"window" binding:"omitempty,min=1,max=366"`
}

// AuditRecordResponse represents an audit trail entry in API responses
type AuditRecordResponse struct {
	EventID       string            `json:"event_id"`
	Type          string            `json:"type"`
	PaymentIndex  *int              `json:"payment_index,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	OccurredAt    string            `json:"occurred_at"`
	RecordedAt    string            `json:"recorded_at"`
}

// AuditTrailResponse represents a page of a deal's audit trail
type AuditTrailResponse struct {
	Records []AuditRecordResponse `json:"records"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

func mapDealToResponse(d *deal.Deal) DealResponse {
	return DealResponse{
		ID:              d.ID,
		Name:            d.Name,
		Size:            d.Size,
		Rate:            d.Rate,
		Term:            d.Term,
		TotalObligation: d.TotalObligation(),
		DailyPayment:    d.DailyPayment(),
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
	}
}

func mapPaymentToResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		DealID:           p.DealID,
		Index:            p.Index,
		Date:             p.Date.Format(shared.DateLayout),
		Amount:           p.Amount,
		Status:           string(p.Status),
		Modified:         p.IsModified(),
		OriginalAmount:   p.OriginalAmount,
		ModificationNote: p.ModificationNote,
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
}

func mapProgressToResponse(dealID string, fraction float64) ProgressResponse {
	return ProgressResponse{
		DealID:   dealID,
		Fraction: fraction,
		Percent:  int(math.Round(fraction * 100)),
	}
}

// mapAllocationToResponse includes dollar amounts when the deal size is known
func mapAllocationToResponse(a *syndication.Allocation, size *decimal.Decimal) AllocationResponse {
	shares := make([]ShareResponse, 0, len(a.Shares))
	for name, pct := range a.Shares {
		share := ShareResponse{Participant: name, Percentage: pct}
		if size != nil {
			amount := syndication.DollarShare(*size, pct)
			share.Amount = &amount
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].Participant < shares[j].Participant })

	return AllocationResponse{DealID: a.DealID, Shares: shares}
}

func mapAuditRecordToResponse(r *audit.Record) AuditRecordResponse {
	return AuditRecordResponse{
		EventID:       r.EventID.String(),
		Type:          string(r.Type),
		PaymentIndex:  r.PaymentIndex,
		Details:       r.Details,
		CorrelationID: r.CorrelationID,
		OccurredAt:    r.OccurredAt.Format(time.RFC3339),
		RecordedAt:    r.RecordedAt.Format(time.RFC3339),
	}
}
