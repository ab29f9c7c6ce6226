package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/mca_api/service"
)

// DealHandler handles HTTP requests for the deal registry
type DealHandler struct {
	dealService service.DealService
	logger      *slog.Logger
}

// NewDealHandler creates a new deal handler
func NewDealHandler(logger *slog.Logger, dealService service.DealService) *DealHandler {
	return &DealHandler{
		dealService: dealService,
		logger:      logger,
	}
}

// Create registers a deal and generates its payment schedule
func (h *DealHandler) Create(c *gin.Context) {
	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	d, err := h.dealService.AddDeal(c.Request.Context(), req.Name, req.Size, req.Rate, req.Term)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to create deal", err)
		return
	}

	RespondCreated(c, mapDealToResponse(d))
}

// List returns every deal in registration order
func (h *DealHandler) List(c *gin.Context) {
	deals, err := h.dealService.ListDeals(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to list deals", err)
		return
	}

	resp := DealListResponse{Deals: make([]DealResponse, 0, len(deals))}
	for _, d := range deals {
		resp.Deals = append(resp.Deals, mapDealToResponse(d))
	}
	RespondOK(c, resp)
}

// GetByID retrieves a deal, returning 404 if not found
func (h *DealHandler) GetByID(c *gin.Context) {
	d, err := h.dealService.FindDeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to get deal", err)
		return
	}

	RespondOK(c, mapDealToResponse(d))
}
