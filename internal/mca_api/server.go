package mca_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/config"
	"github.com/mca-deal-ledger/internal/mca_api/handler"
	"github.com/mca-deal-ledger/internal/mca_api/service"
)

// Services bundles the ledger services exposed over HTTP. Audit is optional.
type Services struct {
	Deals        service.DealService
	Payments     service.PaymentService
	Syndications service.SyndicationService
	Participants service.ParticipantService
	Metrics      service.MetricsService
	Audit        service.AuditService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	httpRouter      *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	h := handlers{
		participants: handler.NewParticipantHandler(log, services.Participants),
		deals:        handler.NewDealHandler(log, services.Deals),
		payments:     handler.NewPaymentHandler(log, services.Payments),
		syndications: handler.NewSyndicationHandler(log, services.Syndications, services.Deals),
		metrics:      handler.NewMetricsHandler(log, services.Metrics, cfg.Ledger.SeriesWindowDays),
	}
	if services.Audit != nil {
		h.audit = handler.NewAuditHandler(log, services.Audit)
	}

	setupRouter(log, httpRouter, h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// Handler exposes the configured router
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests, waiting at most the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
