package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/mca_api/service"
)

// AuditHandler serves the audit trail recorded by the audit processor
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// GetByDeal retrieves a paginated list of audit records for a deal, newest first
func (h *AuditHandler) GetByDeal(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	records, total, err := h.auditService.DealTrail(c.Request.Context(), c.Param("id"), params.Page, params.PerPage)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to get audit trail", err)
		return
	}

	resp := AuditTrailResponse{Records: make([]AuditRecordResponse, 0, len(records))}
	for _, r := range records {
		resp.Records = append(resp.Records, mapAuditRecordToResponse(r))
	}
	RespondWithPaginatedData(c, http.StatusOK, resp, params.Page, params.PerPage, int(total))
}
