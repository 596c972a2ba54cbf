// Package aggregates recomputes the derived investor totals from the transaction
// ledger. It is the only writer of total_bonds and total_contributions.
package aggregates

import (
	"context"
	"sync/atomic"

	"bondbook-backend/internal/application/ledger"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/metrics"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

type Service struct {
	Store ledger.Store
	// Concurrency bounds ReconcileAll. Zero means 4.
	Concurrency int
}

func NewService(store ledger.Store, concurrency int) *Service {
	return &Service{Store: store, Concurrency: concurrency}
}

// Recompute sums the investor's counted transactions for policy and overwrites the
// policy's column. Idempotent; safe to re-run after a partial failure.
func (s *Service) Recompute(ctx context.Context, investorID uint, policy domain.AggregatePolicy) (decimal.Decimal, error) {
	value, err := s.recompute(ctx, investorID, policy)
	metrics.RecomputesTotal.WithLabelValues(policy.String(), metrics.Result(err)).Inc()
	return value, err
}

func (s *Service) recompute(ctx context.Context, investorID uint, policy domain.AggregatePolicy) (decimal.Decimal, error) {
	if err := policy.Validate(); err != nil {
		return decimal.Zero, err
	}
	ok, err := s.Store.InvestorExists(ctx, investorID)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, domain.NotFound("Investor %d not found.", investorID)
	}
	sum, err := s.Store.SumTransactionAmounts(ctx, investorID, policy)
	if err != nil {
		return decimal.Zero, err
	}
	sum = sum.Round(2)
	if err := s.Store.SetInvestorAggregate(ctx, investorID, policy, sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// Totals holds both recomputed aggregates of one investor.
type Totals struct {
	InvestorID         uint            `json:"investor_id"`
	TotalBonds         decimal.Decimal `json:"total_bonds"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
}

// RecomputeAll recomputes every policy for one investor. This is the standalone
// reconcile operation.
func (s *Service) RecomputeAll(ctx context.Context, investorID uint) (*Totals, error) {
	out := &Totals{InvestorID: investorID}
	for _, p := range domain.Policies {
		v, err := s.Recompute(ctx, investorID, p)
		if err != nil {
			return nil, err
		}
		if p == domain.PolicyApprovedOnly {
			out.TotalBonds = v
		} else {
			out.TotalContributions = v
		}
	}
	return out, nil
}

// ReconcileResult summarises a ReconcileAll sweep.
type ReconcileResult struct {
	Investors int `json:"investors"`
	Failed    int `json:"failed"`
}

// ReconcileAll recomputes every investor with bounded concurrency. Individual
// failures are logged and counted; the sweep stops early only on context cancellation.
func (s *Service) ReconcileAll(ctx context.Context) (*ReconcileResult, error) {
	ids, err := s.Store.ListInvestorIDs(ctx)
	if err != nil {
		return nil, err
	}
	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.RecomputeAll(gctx, id); err != nil {
				failed.Add(1)
				log.Error().Err(err).Uint("investor_id", id).Msg("reconcile investor failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := &ReconcileResult{Investors: len(ids), Failed: int(failed.Load())}
	log.Info().Int("investors", res.Investors).Int("failed", res.Failed).Msg("reconcile sweep finished")
	return res, nil
}
