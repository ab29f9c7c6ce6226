package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/mca_api/service"
)

// PaymentHandler handles HTTP requests against a deal's payment ledger
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// List returns the deal's schedule
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.paymentService.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to list payments", err)
		return
	}

	resp := PaymentListResponse{Payments: make([]PaymentResponse, 0, len(payments))}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, mapPaymentToResponse(p))
	}
	RespondOK(c, resp)
}

// UpdateStatus overwrites one payment's status
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	status, err := payment.ParseStatus(req.Status)
	if err != nil {
		RespondServiceError(c, h.logger, "Rejected payment status", err)
		return
	}

	p, err := h.paymentService.SetStatus(c.Request.Context(), c.Param("id"), index, status)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to update payment status", err)
		return
	}

	RespondOK(c, mapPaymentToResponse(p))
}

// Modify replaces one payment's amount with an optional note
func (h *PaymentHandler) Modify(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}

	var req ModifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.paymentService.Modify(c.Request.Context(), c.Param("id"), index, req.Amount, req.Note)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to modify payment", err)
		return
	}

	RespondOK(c, mapPaymentToResponse(p))
}

// Progress reports the share of the deal's payments marked paid
func (h *PaymentHandler) Progress(c *gin.Context) {
	dealID := c.Param("id")

	fraction, err := h.paymentService.Progress(c.Request.Context(), dealID)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to compute progress", err)
		return
	}

	RespondOK(c, mapProgressToResponse(dealID, fraction))
}

// parseIndex reads the :index path parameter, writing a 400 when it is not an integer
func parseIndex(c *gin.Context) (int, bool) {
	raw := c.Param("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		RespondBadRequest(c, "Invalid payment index: "+raw)
		return 0, false
	}
	return index, true
}
