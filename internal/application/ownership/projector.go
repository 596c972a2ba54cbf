package ownership

import (
	"context"
	"sort"
	"strings"

	"bondbook-backend/internal/application/ledger"
	"bondbook-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Projector struct {
	Store  ledger.Store
	Source Source
}

func NewProjector(store ledger.Store, source Source) *Projector {
	if source == nil {
		source = ExplicitSource{Store: store}
	}
	return &Projector{Store: store, Source: source}
}

func sortOwners(owners []domain.OwnerShare) {
	sort.SliceStable(owners, func(i, j int) bool {
		if owners[i].Name != owners[j].Name {
			return owners[i].Name < owners[j].Name
		}
		return owners[i].InvestorID < owners[j].InvestorID
	})
}

// Project returns one asset with its owners ordered by name.
func (p *Projector) Project(ctx context.Context, assetID uint) (*domain.AssetOwnership, error) {
	asset, err := p.Store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return p.project(ctx, *asset)
}

func (p *Projector) project(ctx context.Context, asset domain.Asset) (*domain.AssetOwnership, error) {
	owners, err := p.Source.Owners(ctx, asset)
	if err != nil {
		return nil, err
	}
	if owners == nil {
		owners = []domain.OwnerShare{}
	}
	sortOwners(owners)
	return &domain.AssetOwnership{Asset: asset, Ownerships: owners}, nil
}

// ProjectAll returns every asset ordered by name.
func (p *Projector) ProjectAll(ctx context.Context) ([]domain.AssetOwnership, error) {
	assets, err := p.Store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	out := make([]domain.AssetOwnership, 0, len(assets))
	for _, a := range assets {
		proj, err := p.project(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, *proj)
	}
	return out, nil
}

// InvestorAsset is one asset seen from a single investor's side.
type InvestorAsset struct {
	AssetID    uint            `json:"asset_id"`
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// ForInvestor returns only the assets in which investorID holds a share.
func (p *Projector) ForInvestor(ctx context.Context, investorID uint) ([]InvestorAsset, error) {
	all, err := p.ProjectAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []InvestorAsset{}
	for _, a := range all {
		share, ok := lo.Find(a.Ownerships, func(o domain.OwnerShare) bool { return o.InvestorID == investorID })
		if !ok {
			continue
		}
		out = append(out, InvestorAsset{
			AssetID:    a.ID,
			Name:       a.Name,
			Value:      a.Value,
			Percentage: share.Percentage,
			Amount:     share.Amount,
		})
	}
	return out, nil
}

// OwnerInput is one explicit ownership row in an asset edit.
type OwnerInput struct {
	InvestorID uint            `json:"investor_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

// UpdateAsset replaces the asset's name, value and explicit ownership rows.
// Each percentage must lie in [0,100] and together they may not exceed 100.
func (p *Projector) UpdateAsset(ctx context.Context, id uint, name string, value decimal.Decimal, owners []OwnerInput) (*domain.AssetOwnership, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("Missing required fields.")
	}
	if !value.IsPositive() {
		return nil, domain.Validation("Asset value must be a positive number.")
	}

	rows := make([]domain.Ownership, 0, len(owners))
	seen := map[uint]bool{}
	total := decimal.Zero
	for _, o := range owners {
		if o.InvestorID == 0 {
			return nil, domain.Validation("Each ownership needs an investor_id.")
		}
		if seen[o.InvestorID] {
			return nil, domain.Validation("Investor %d is listed more than once.", o.InvestorID)
		}
		seen[o.InvestorID] = true
		if o.Percentage.IsNegative() || o.Percentage.GreaterThan(hundred) {
			return nil, domain.Validation("Percentage for investor %d must be between 0 and 100.", o.InvestorID)
		}
		pct := o.Percentage.Round(2)
		total = total.Add(pct)
		rows = append(rows, domain.Ownership{AssetID: id, InvestorID: o.InvestorID, Percentage: pct})
	}
	if total.GreaterThan(hundred) {
		return nil, domain.Validation("Ownership percentages add up to %s, more than 100.", total.StringFixed(2))
	}

	ids := lo.Map(rows, func(o domain.Ownership, _ int) uint { return o.InvestorID })
	names, err := p.Store.InvestorNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			return nil, domain.NotFound("Investor %d not found.", id)
		}
	}

	asset := domain.Asset{ID: id, Name: name, Value: value.Round(2)}
	if err := p.Store.UpdateAsset(ctx, &asset, rows); err != nil {
		return nil, err
	}
	log.Info().Uint("asset_id", id).Int("owners", len(rows)).Msg("asset updated")
	return p.Project(ctx, id)
}
