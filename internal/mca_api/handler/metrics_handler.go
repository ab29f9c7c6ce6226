package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/domain/metrics"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/mca_api/service"
)

// MetricsHandler serves portfolio metrics
type MetricsHandler struct {
	metricsService service.MetricsService
	defaultWindow  int
	logger         *slog.Logger
}

// NewMetricsHandler creates a new metrics handler. defaultWindow applies when the
// daily series is requested without a window.
func NewMetricsHandler(logger *slog.Logger, metricsService service.MetricsService, defaultWindow int) *MetricsHandler {
	return &MetricsHandler{
		metricsService: metricsService,
		defaultWindow:  defaultWindow,
		logger:         logger,
	}
}

func (h *MetricsHandler) Summary(c *gin.Context) {
	summary, err := h.metricsService.Summary(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to compute summary", err)
		return
	}
	RespondOK(c, summary)
}

// DailyCollections returns the collected amount per calendar day, oldest first
func (h *MetricsHandler) DailyCollections(c *gin.Context) {
	var params DailyCollectionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	window := params.Window
	if window == 0 {
		window = h.defaultWindow
	}

	series, err := h.metricsService.DailyCollectionSeries(c.Request.Context(), window)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to compute daily collections", err)
		return
	}

	resp := DailyCollectionsResponse{Window: window, Series: make([]DailyCollectionResponse, 0, window)}
	for day, amount := range series {
		resp.Series = append(resp.Series, DailyCollectionResponse{
			Date:   day.Format(shared.DateLayout),
			Amount: amount,
		})
	}
	RespondOK(c, resp)
}

func (h *MetricsHandler) Distribution(c *gin.Context) {
	slices, err := h.metricsService.Distribution(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to compute distribution", err)
		return
	}
	if slices == nil {
		slices = []metrics.Slice{}
	}
	RespondOK(c, gin.H{"deals": slices})
}

func (h *MetricsHandler) Exposure(c *gin.Context) {
	positions, err := h.metricsService.Exposure(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to compute exposure", err)
		return
	}
	if positions == nil {
		positions = []metrics.Position{}
	}
	RespondOK(c, gin.H{"participants": positions})
}
