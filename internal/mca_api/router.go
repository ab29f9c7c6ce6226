package mca_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/mca_api/handler"
	"github.com/mca-deal-ledger/internal/mca_api/middleware"
)

type handlers struct {
	participants *handler.ParticipantHandler
	deals        *handler.DealHandler
	payments     *handler.PaymentHandler
	syndications *handler.SyndicationHandler
	metrics      *handler.MetricsHandler
	audit        *handler.AuditHandler // nil without an audit store
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		participants := v1.Group("/participants")
		{
			participants.POST("", h.participants.Create)
			participants.GET("", h.participants.List)
		}

		deals := v1.Group("/deals")
		{
			deals.POST("", h.deals.Create)
			deals.GET("", h.deals.List)
			deals.GET("/:id", h.deals.GetByID)

			deals.GET("/:id/payments", h.payments.List)
			deals.PUT("/:id/payments/:index/status", h.payments.UpdateStatus)
			deals.POST("/:id/payments/:index/modifications", h.payments.Modify)
			deals.GET("/:id/progress", h.payments.Progress)

			deals.PUT("/:id/syndication", h.syndications.Assign)
			deals.GET("/:id/syndication", h.syndications.GetByDeal)
			deals.GET("/:id/syndication/:participant", h.syndications.DollarShare)

			if h.audit != nil {
				deals.GET("/:id/audit", h.audit.GetByDeal)
			}
		}

		v1.GET("/syndications", h.syndications.List)

		metrics := v1.Group("/metrics")
		{
			metrics.GET("/summary", h.metrics.Summary)
			metrics.GET("/daily-collections", h.metrics.DailyCollections)
			metrics.GET("/distribution", h.metrics.Distribution)
			metrics.GET("/exposure", h.metrics.Exposure)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
