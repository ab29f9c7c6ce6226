package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/shopspring/decimal"
)

type seedDeal struct {
	name   string
	size   int64
	rate   string
	term   int
	shares map[string]int64
}

var (
	seedParticipants = []string{"albert", "jacobo", "matty", "joel", "zack", "juli"}

	seedDeals = []seedDeal{
		{name: "Green Cafe", size: 30000, rate: "1.49", term: 30, shares: map[string]int64{"albert": 40, "jacobo": 60}},
		{name: "FastFit Gym", size: 50000, rate: "1.45", term: 60, shares: map[string]int64{"matty": 30, "joel": 30, "zack": 40}},
		{name: "TechNova Labs", size: 100000, rate: "1.5", term: 90, shares: map[string]int64{"juli": 50, "jacobo": 50}},
	}
)

// Seeder loads the demo book: six participants and three syndicated deals (D101-D103)
type Seeder struct {
	deals        DealService
	participants ParticipantService
	syndications SyndicationService
	dealRepo     deal.Repository
	logger       *slog.Logger
}

// NewSeeder creates a seeder that writes through the services, so seeded data emits
// the same ledger events as API traffic.
func NewSeeder(logger *slog.Logger, dealRepo deal.Repository, deals DealService, participants ParticipantService, syndications SyndicationService) *Seeder {
	return &Seeder{
		deals:        deals,
		participants: participants,
		syndications: syndications,
		dealRepo:     dealRepo,
		logger:       logger,
	}
}

// Seed is a no-op when the registry already holds deals
func (s *Seeder) Seed(ctx context.Context) error {
	count, err := s.dealRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count deals: %w", err)
	}
	if count > 0 {
		s.logger.Info("Skipping demo data, deal registry is not empty", "deals", count)
		return nil
	}

	for _, name := range seedParticipants {
		if _, err := s.participants.Register(ctx, name); err != nil {
			return fmt.Errorf("failed to seed participant %s: %w", name, err)
		}
	}

	for _, sd := range seedDeals {
		d, err := s.deals.AddDeal(ctx, sd.name, decimal.NewFromInt(sd.size), decimal.RequireFromString(sd.rate), sd.term)
		if err != nil {
			return fmt.Errorf("failed to seed deal %s: %w", sd.name, err)
		}

		shares := make(map[string]decimal.Decimal, len(sd.shares))
		for name, pct := range sd.shares {
			shares[name] = decimal.NewFromInt(pct)
		}
		if _, err := s.syndications.Assign(ctx, d.ID, shares); err != nil {
			return fmt.Errorf("failed to seed syndication of %s: %w", d.ID, err)
		}
	}

	s.logger.Info("Demo data seeded", "participants", len(seedParticipants), "deals", len(seedDeals))
	return nil
}
