// Package ownership projects who owns how much of each asset.
package ownership

import (
	"context"
	"fmt"
	"strings"

	"bondbook-backend/internal/application/ledger"
	"bondbook-backend/internal/domain"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Source kinds selectable by configuration.
const (
	SourceExplicit = "explicit"
	SourceDerived  = "derived"
)

var hundred = decimal.NewFromInt(100)

// Source yields the owners of one asset. Implementations omit owners with a zero
// share; ordering is left to the Projector.
type Source interface {
	Owners(ctx context.Context, asset domain.Asset) ([]domain.OwnerShare, error)
	Name() string
}

// NewSource returns the source named by kind; an empty kind means explicit.
func NewSource(kind string, store ledger.Store) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", SourceExplicit:
		return ExplicitSource{Store: store}, nil
	case SourceDerived:
		return DerivedSource{Store: store}, nil
	}
	return nil, fmt.Errorf("unknown ownership source %q", kind)
}

// ExplicitSource reads stored ownership percentages; amount = pct/100 * value.
type ExplicitSource struct {
	Store ledger.Store
}

func (ExplicitSource) Name() string { return SourceExplicit }

func (s ExplicitSource) Owners(ctx context.Context, asset domain.Asset) ([]domain.OwnerShare, error) {
	rows, err := s.Store.GetOwnerships(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	rows = lo.Filter(rows, func(o domain.Ownership, _ int) bool { return o.Percentage.IsPositive() })
	names, err := s.Store.InvestorNames(ctx, lo.Map(rows, func(o domain.Ownership, _ int) uint { return o.InvestorID }))
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(o domain.Ownership, _ int) domain.OwnerShare {
		return domain.OwnerShare{
			InvestorID: o.InvestorID,
			Name:       names[o.InvestorID],
			Percentage: o.Percentage,
			Amount:     o.Percentage.Mul(asset.Value).Div(hundred).Round(2),
		}
	}), nil
}

// DerivedSource computes shares at read time from approved transactions that
// reference the asset: pct = sum / value * 100. A zero-valued asset yields 0%.
// Percentages may exceed 100 when contributions exceed the asset value.
type DerivedSource struct {
	Store ledger.Store
}

func (DerivedSource) Name() string { return SourceDerived }

func (s DerivedSource) Owners(ctx context.Context, asset domain.Asset) ([]domain.OwnerShare, error) {
	sums, err := s.Store.ApprovedAssetSums(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OwnerShare, 0, len(sums))
	for _, sum := range sums {
		if !sum.Total.IsPositive() {
			continue
		}
		pct := decimal.Zero
		if asset.Value.IsPositive() {
			pct = sum.Total.Mul(hundred).DivRound(asset.Value, 8).Round(2)
		}
		out = append(out, domain.OwnerShare{
			InvestorID: sum.InvestorID,
			Name:       sum.Name,
			Percentage: pct,
			Amount:     sum.Total.Round(2),
		})
	}
	return out, nil
}
