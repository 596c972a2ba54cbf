package allocation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"bondbook-backend/internal/application/aggregates"
	"bondbook-backend/internal/application/ledger"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/metrics"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Service struct {
	Store      ledger.Store
	Aggregates *aggregates.Service
	Events     ledger.EventPublisher
}

func NewService(store ledger.Store, agg *aggregates.Service, events ledger.EventPublisher) *Service {
	if events == nil {
		events = ledger.NopPublisher{}
	}
	return &Service{Store: store, Aggregates: agg, Events: events}
}

// DistributionResult is returned by DistributeInterest.
type DistributionResult struct {
	Run    domain.DistributionRun `json:"run"`
	Shares []Share                `json:"shares"`
	// Failed lists beneficiaries whose aggregates could not be refreshed.
	Failed []uint `json:"failed,omitempty"`
}

// DistributeInterest splits amount across every investor in proportion to
// total_bonds and records one approved interest row per beneficiary. The rows and
// the run record commit together; aggregates are refreshed afterwards, once per
// beneficiary.
func (s *Service) DistributeInterest(ctx context.Context, amount decimal.Decimal, date time.Time) (*DistributionResult, error) {
	res, err := s.distributeInterest(ctx, amount, date)
	metrics.DistributionsTotal.WithLabelValues(string(domain.DistributionInterest), metrics.Result(err)).Inc()
	return res, err
}

func (s *Service) distributeInterest(ctx context.Context, amount decimal.Decimal, date time.Time) (*DistributionResult, error) {
	if !amount.IsPositive() {
		return nil, domain.Validation("Amount must be a positive number.")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	weights, err := s.Store.InvestorWeights(ctx, domain.PolicyApprovedOnly)
	if err != nil {
		return nil, err
	}
	shares, err := Distribute(amount, nonZero(weights))
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Transaction, 0, len(shares))
	for _, sh := range shares {
		if sh.Amount.IsZero() {
			continue
		}
		rows = append(rows, domain.Transaction{
			InvestorID: sh.BeneficiaryID,
			Amount:     sh.Amount,
			Date:       date,
			Type:       domain.TypeInterest,
			Status:     domain.StatusApproved,
		})
	}

	summary, err := json.Marshal(shares)
	if err != nil {
		return nil, err
	}
	remainder := Remainder(amount, shares)
	run := domain.DistributionRun{
		Kind:          domain.DistributionInterest,
		Total:         amount,
		Distributed:   Distributed(shares),
		Remainder:     remainder,
		Beneficiaries: len(rows),
		Date:          date,
		Summary:       datatypes.JSON(summary),
	}
	if err := s.Store.RecordDistribution(ctx, &run, rows); err != nil {
		return nil, err
	}
	metrics.DistributionRemainder.Observe(remainder.Abs().InexactFloat64())

	res := &DistributionResult{Run: run, Shares: shares}
	for _, row := range rows {
		if _, err := s.Aggregates.RecomputeAll(ctx, row.InvestorID); err != nil {
			log.Warn().Err(err).Uint("investor_id", row.InvestorID).Uint("run_id", run.ID).
				Msg("interest row stored but aggregate recompute failed; run reconcile for this investor")
			res.Failed = append(res.Failed, row.InvestorID)
		}
	}

	log.Info().Uint("run_id", run.ID).Str("total", amount.StringFixed(2)).
		Str("remainder", remainder.String()).Int("beneficiaries", len(rows)).
		Msg("interest distributed")
	ledger.Emit(ctx, s.Events, ledger.NewEvent(ledger.EventInterestDistributed, map[string]interface{}{
		"run_id":        run.ID,
		"total":         run.Total,
		"distributed":   run.Distributed,
		"remainder":     run.Remainder,
		"beneficiaries": run.Beneficiaries,
	}))

	if len(res.Failed) > 0 {
		return res, &domain.Error{Kind: domain.KindStoreFailure, Message: "recompute after distribution"}
	}
	return res, nil
}

// ContributionWeight is one explicit weight used to seed asset ownership.
type ContributionWeight struct {
	InvestorID uint            `json:"investor_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

// AssetInput describes a new asset. With no Contributions, ownership is seeded from
// every investor's total_bonds.
type AssetInput struct {
	Name          string
	Value         decimal.Decimal
	Contributions []ContributionWeight
}

// CreateAsset stores the asset together with ownership percentages proportional to
// the seeding weights.
func (s *Service) CreateAsset(ctx context.Context, in AssetInput) (*domain.AssetOwnership, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("Missing required fields.")
	}
	if !in.Value.IsPositive() {
		return nil, domain.Validation("Asset value must be a positive number.")
	}

	weights, err := s.seedWeights(ctx, in.Contributions)
	if err != nil {
		return nil, err
	}
	pcts, err := Percentages(weights)
	if err != nil {
		return nil, err
	}
	names, err := s.Store.InvestorNames(ctx, lo.Map(pcts, func(sh Share, _ int) uint { return sh.BeneficiaryID }))
	if err != nil {
		return nil, err
	}
	for _, sh := range pcts {
		if _, ok := names[sh.BeneficiaryID]; !ok {
			return nil, domain.NotFound("Investor %d not found.", sh.BeneficiaryID)
		}
	}

	owners := make([]domain.Ownership, 0, len(pcts))
	for _, sh := range pcts {
		if sh.Amount.IsZero() {
			continue
		}
		owners = append(owners, domain.Ownership{InvestorID: sh.BeneficiaryID, Percentage: sh.Amount})
	}

	asset := domain.Asset{Name: name, Value: in.Value.Round(2)}
	if err := s.Store.CreateAssetWithOwnerships(ctx, &asset, owners); err != nil {
		return nil, err
	}

	out := &domain.AssetOwnership{Asset: asset, Ownerships: []domain.OwnerShare{}}
	for _, o := range owners {
		out.Ownerships = append(out.Ownerships, domain.OwnerShare{
			InvestorID: o.InvestorID,
			Name:       names[o.InvestorID],
			Percentage: o.Percentage,
			Amount:     o.Percentage.Mul(asset.Value).Div(hundred).Round(2),
		})
	}
	log.Info().Uint("asset_id", asset.ID).Int("owners", len(owners)).Msg("asset created")
	ledger.Emit(ctx, s.Events, ledger.NewEvent(ledger.EventAssetCreated, map[string]interface{}{
		"asset_id": asset.ID,
		"name":     asset.Name,
		"value":    asset.Value,
		"owners":   len(owners),
	}))
	return out, nil
}

func (s *Service) seedWeights(ctx context.Context, contributions []ContributionWeight) (map[uint]decimal.Decimal, error) {
	if len(contributions) == 0 {
		weights, err := s.Store.InvestorWeights(ctx, domain.PolicyApprovedOnly)
		if err != nil {
			return nil, err
		}
		return nonZero(weights), nil
	}
	weights := make(map[uint]decimal.Decimal, len(contributions))
	for _, c := range contributions {
		if c.InvestorID == 0 {
			return nil, domain.Validation("Each contribution needs an investor_id.")
		}
		weights[c.InvestorID] = weights[c.InvestorID].Add(c.Amount)
	}
	return nonZero(weights), nil
}
