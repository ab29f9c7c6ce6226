package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mca-deal-ledger/internal/audit_processor/consumer"
	"github.com/mca-deal-ledger/internal/audit_processor/service"
	"github.com/mca-deal-ledger/internal/config"
	"github.com/mca-deal-ledger/internal/data/mongo"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/logger"
	"github.com/mca-deal-ledger/internal/platform/messaging/consumers"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
	"github.com/mca-deal-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("audit_processor")
	if err == nil {
		err = cfg.ValidateAuditProcessor()
	}
	if err != nil {
		// logger is not initialized yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Audit Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())
	if err := auditRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create audit indexes", "error", err)
		os.Exit(1)
	}

	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// a nil *DLQProducer must not reach the handler as a non-nil interface
	var dlq producers.DeadLetterPublisher
	if dlqProducer != nil {
		dlq = dlqProducer
	}

	recordingService, err := service.NewWorkerPoolRecordingService(
		service.NewAuditRecordingService(log, auditRepo, shared.Clock(time.Now)),
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	eventHandler := consumer.NewLedgerEventHandler(log, recordingService, dlq)

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := kafkaConsumer.Consume(appCtx, eventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Kafka consumer stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	recordingService.Shutdown()

	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Audit Processor shutdown completed with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Audit Processor shutdown completed successfully")
}
