package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolRecordingService runs a RecordingService on a bounded ants pool. Callers
// block until their event has been recorded; the pool caps the number of concurrent
// writes to the audit store across all callers.
type WorkerPoolRecordingService struct {
	base   RecordingService
	pool   *ants.Pool
	logger *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolRecordingService(base RecordingService, config WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolRecordingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolRecordingService{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

// RecordEvent submits the event to the pool and waits for the outcome. A panicking
// task is reported as an error instead of taking the worker down.
func (s *WorkerPoolRecordingService) RecordEvent(ctx context.Context, event *shared.LedgerEvent) error {
	result := make(chan error, 1)
	eventCopy := *event

	err := s.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("panic while recording event %s: %v", eventCopy.EventID.String(), r)
			}
		}()
		result <- s.base.RecordEvent(ctx, &eventCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit event to worker pool",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to submit event to worker pool: %w", err)
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown releases the pool; queued tasks are dropped
func (s *WorkerPoolRecordingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolRecordingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolRecordingService) Capacity() int {
	return s.pool.Cap()
}
