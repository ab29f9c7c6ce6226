package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/domain/participant"
	"github.com/mca-deal-ledger/internal/mca_api/service"
	"github.com/shopspring/decimal"
)

// SyndicationHandler handles HTTP requests for deal allocations
type SyndicationHandler struct {
	syndicationService service.SyndicationService
	dealService        service.DealService
	logger             *slog.Logger
}

// NewSyndicationHandler creates a new syndication handler
func NewSyndicationHandler(logger *slog.Logger, syndicationService service.SyndicationService, dealService service.DealService) *SyndicationHandler {
	return &SyndicationHandler{
		syndicationService: syndicationService,
		dealService:        dealService,
		logger:             logger,
	}
}

// Assign replaces the deal's allocation. Shares not summing to 100 yield a 422.
func (h *SyndicationHandler) Assign(c *gin.Context) {
	var req AssignSyndicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	allocation, err := h.syndicationService.Assign(ctx, c.Param("id"), req.Shares)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to assign syndication", err)
		return
	}

	d, err := h.dealService.FindDeal(ctx, allocation.DealID)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to get deal", err)
		return
	}

	RespondOK(c, mapAllocationToResponse(allocation, &d.Size))
}

// GetByDeal returns the deal's allocation with each participant's dollar share
func (h *SyndicationHandler) GetByDeal(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.dealService.FindDeal(ctx, c.Param("id"))
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to get deal", err)
		return
	}

	allocation, err := h.syndicationService.DealAllocation(ctx, d.ID)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to get syndication", err)
		return
	}

	RespondOK(c, mapAllocationToResponse(allocation, &d.Size))
}

// DollarShare returns one participant's dollar share of a deal, zero if it holds none
func (h *SyndicationHandler) DollarShare(c *gin.Context) {
	name, err := participant.Normalize(c.Param("participant"))
	if err != nil {
		RespondServiceError(c, h.logger, "Invalid participant", err)
		return
	}

	dealID := c.Param("id")
	amount, err := h.syndicationService.DollarShare(c.Request.Context(), dealID, name)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to compute dollar share", err)
		return
	}

	RespondOK(c, DollarShareResponse{DealID: dealID, Participant: name, Amount: amount})
}

// List returns every stored allocation
func (h *SyndicationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	allocations, err := h.syndicationService.ListAllocations(ctx)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to list syndications", err)
		return
	}

	deals, err := h.dealService.ListDeals(ctx)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to list deals", err)
		return
	}
	sizes := make(map[string]decimal.Decimal, len(deals))
	for _, d := range deals {
		sizes[d.ID] = d.Size
	}

	resp := AllocationListResponse{Syndications: make([]AllocationResponse, 0, len(allocations))}
	for _, a := range allocations {
		var size *decimal.Decimal
		if s, ok := sizes[a.DealID]; ok {
			size = &s
		}
		resp.Syndications = append(resp.Syndications, mapAllocationToResponse(a, size))
	}
	RespondOK(c, resp)
}
