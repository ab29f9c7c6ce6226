package service

import (
	"context"
	"log/slog"

	"github.com/mca-deal-ledger/internal/domain/audit"
	"github.com/mca-deal-ledger/internal/domain/deal"
)

// AuditServiceImpl implements the AuditService interface
type AuditServiceImpl struct {
	dealRepo  deal.Repository
	auditRepo audit.Repository
	logger    *slog.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(logger *slog.Logger, dealRepo deal.Repository, auditRepo audit.Repository) AuditService {
	return &AuditServiceImpl{
		dealRepo:  dealRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// DealTrail retrieves a paginated slice of the deal's audit records
func (s *AuditServiceImpl) DealTrail(ctx context.Context, dealID string, page, perPage int) ([]*audit.Record, int64, error) {
	if _, err := s.dealRepo.GetByID(ctx, dealID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage

	records, err := s.auditRepo.ListByDeal(ctx, dealID, perPage, offset)
	if err != nil {
		s.logger.Error("Failed to list audit records", "deal_id", dealID, "error", err)
		return nil, 0, err
	}

	total, err := s.auditRepo.CountByDeal(ctx, dealID)
	if err != nil {
		s.logger.Error("Failed to count audit records", "deal_id", dealID, "error", err)
		return nil, 0, err
	}

	return records, total, nil
}
