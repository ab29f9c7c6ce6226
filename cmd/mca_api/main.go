package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mca-deal-ledger/internal/config"
	"github.com/mca-deal-ledger/internal/data/memory"
	"github.com/mca-deal-ledger/internal/data/mongo"
	"github.com/mca-deal-ledger/internal/data/postgres"
	"github.com/mca-deal-ledger/internal/domain/audit"
	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/participant"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/mca-deal-ledger/internal/logger"
	"github.com/mca-deal-ledger/internal/mca_api"
	"github.com/mca-deal-ledger/internal/mca_api/service"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
	"github.com/mca-deal-ledger/internal/platform/persistence"
)

// stores is the set of repositories backing the API, plus a hook releasing their connections
type stores struct {
	deals        deal.Repository
	payments     payment.Repository
	participants participant.Repository
	syndications syndication.Repository
	audit        audit.Repository // nil in memory mode
	close        func(ctx context.Context)
}

func memoryStores() *stores {
	return &stores{
		deals:        memory.NewDealRepository(),
		payments:     memory.NewPaymentRepository(),
		participants: memory.NewParticipantRepository(),
		syndications: memory.NewSyndicationRepository(),
		close:        func(context.Context) {},
	}
}

// persistentStores keeps deals, participants and syndications in Postgres and the
// payment ledger and audit trail in MongoDB
func persistentStores(ctx context.Context, log *slog.Logger, cfg *config.Config) (*stores, error) {
	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
	if err != nil {
		postgresDB.Close()
		return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
	}

	closeAll := func(ctx context.Context) {
		postgresDB.Close()
		if err := mongoDB.Close(ctx); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}

	paymentRepo := mongo.NewPaymentRepository(log, mongoDB.Database())
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())
	if err := paymentRepo.EnsureIndexes(ctx); err != nil {
		closeAll(ctx)
		return nil, err
	}
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		closeAll(ctx)
		return nil, err
	}

	return &stores{
		deals:        postgres.NewDealRepository(log, postgresDB),
		payments:     paymentRepo,
		participants: postgres.NewParticipantRepository(log, postgresDB),
		syndications: postgres.NewSyndicationRepository(log, postgresDB),
		audit:        auditRepo,
		close:        closeAll,
	}, nil
}

func eventPublisher(ctx context.Context, log *slog.Logger, cfg *config.Config) (producers.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		log.Info("Kafka disabled, ledger events will not be published")
		return producers.NoopPublisher{}, nil
	}
	return producers.NewLedgerEventProducer(ctx, log, &cfg.Kafka)
}

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("mca_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	var repos *stores
	if cfg.Storage.Persistent() {
		repos, err = persistentStores(appCtx, log, cfg)
		if err != nil {
			log.Error("Failed to initialize persistent storage", "error", err)
			os.Exit(1)
		}
	} else {
		repos = memoryStores()
	}
	log.Info("Storage initialized", "driver", cfg.Storage.Driver)

	publisher, err := eventPublisher(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize ledger event producer", "error", err)
		os.Exit(1)
	}

	clock := shared.Clock(time.Now)

	dealService := service.NewDealService(log, repos.deals, repos.payments, publisher, clock)
	participantService := service.NewParticipantService(log, repos.participants, publisher, clock)
	syndicationService := service.NewSyndicationService(log, repos.deals, repos.participants, repos.syndications, publisher, clock)

	services := mca_api.Services{
		Deals:        dealService,
		Payments:     service.NewPaymentService(log, repos.payments, publisher, clock),
		Syndications: syndicationService,
		Participants: participantService,
		Metrics:      service.NewMetricsService(repos.deals, repos.payments, repos.syndications, clock),
	}
	if repos.audit != nil {
		services.Audit = service.NewAuditService(log, repos.deals, repos.audit)
	}

	if cfg.Ledger.SeedDemoData {
		seeder := service.NewSeeder(log, repos.deals, dealService, participantService, syndicationService)
		if err := seeder.Seed(appCtx); err != nil {
			log.Error("Failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	server := mca_api.NewServer(log, cfg, services)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		serverErr = err
	}

	if err := publisher.Close(); err != nil {
		log.Error("Error closing ledger event producer", "error", err)
	}

	repos.close(shutdownCtx)

	if serverErr != nil {
		log.Error("Server shutdown completed with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
