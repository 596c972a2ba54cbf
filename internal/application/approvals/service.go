// Package approvals owns the pending -> approved|rejected life cycle of ledger
// transactions and investor contribution submission.
package approvals

import (
	"context"
	"time"

	"bondbook-backend/internal/application/aggregates"
	"bondbook-backend/internal/application/ledger"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/metrics"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BondDefaults are the terms recorded for a contribution submitted by an investor.
type BondDefaults struct {
	Rate           decimal.Decimal
	MaturityMonths int
}

type Service struct {
	Store      ledger.Store
	Aggregates *aggregates.Service
	Events     ledger.EventPublisher
	Bond       BondDefaults
}

func NewService(store ledger.Store, agg *aggregates.Service, events ledger.EventPublisher, bond BondDefaults) *Service {
	if events == nil {
		events = ledger.NopPublisher{}
	}
	return &Service{Store: store, Aggregates: agg, Events: events, Bond: bond}
}

// policiesAfter returns the aggregates that a transition to status invalidates.
func policiesAfter(status domain.TransactionStatus, typ domain.TransactionType) []domain.AggregatePolicy {
	if !typ.CountsTowardAggregate() {
		return nil
	}
	if status == domain.StatusApproved {
		return domain.Policies
	}
	// a rejected row leaves approved-only unchanged and drops out of the provisional total
	return []domain.AggregatePolicy{domain.PolicyAllNonRejected}
}

// Transition moves a pending transaction to approved or rejected. The status write
// is durable before the owning investor's aggregates are recomputed; a failed
// recompute is reported but not rolled back.
func (s *Service) Transition(ctx context.Context, txID uint, newStatus string) (*domain.Transaction, error) {
	tx, err := s.transition(ctx, txID, newStatus)
	metrics.TransitionsTotal.WithLabelValues(newStatus, metrics.Result(err)).Inc()
	return tx, err
}

func (s *Service) transition(ctx context.Context, txID uint, newStatus string) (*domain.Transaction, error) {
	status, err := domain.ParseTargetStatus(newStatus)
	if err != nil {
		return nil, err
	}
	tx, err := s.Store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status.Terminal() {
		return nil, domain.InvalidState("Transaction %d is already %s.", tx.ID, tx.Status)
	}
	if err := s.Store.SetTransactionStatus(ctx, tx.ID, status); err != nil {
		return nil, err
	}
	previous := tx.Status
	tx.Status = status

	for _, p := range policiesAfter(status, tx.Type) {
		if _, err := s.Aggregates.Recompute(ctx, tx.InvestorID, p); err != nil {
			log.Warn().Err(err).
				Uint("transaction_id", tx.ID).
				Uint("investor_id", tx.InvestorID).
				Str("policy", p.String()).
				Msg("status written but aggregate recompute failed; run reconcile for this investor")
			return nil, domain.StoreFailure("recompute after transition", err)
		}
	}

	log.Info().Uint("transaction_id", tx.ID).Str("from", string(previous)).Str("to", string(status)).Msg("transaction transitioned")
	ledger.Emit(ctx, s.Events, ledger.NewEvent(ledger.EventTransactionStatusChanged, map[string]interface{}{
		"transaction_id": tx.ID,
		"investor_id":    tx.InvestorID,
		"from":           previous,
		"to":             status,
		"amount":         tx.Amount,
		"type":           tx.Type,
	}))
	return tx, nil
}

// ContributionInput is an investor-submitted contribution. A zero Date means today.
type ContributionInput struct {
	InvestorID uint
	Amount     decimal.Decimal
	Date       time.Time
	AssetID    *uint
}

// Contribution is the result of SubmitContribution.
type Contribution struct {
	Transaction        domain.Transaction      `json:"transaction"`
	Bond               domain.BondContribution `json:"bond"`
	TotalContributions decimal.Decimal         `json:"total_contributions"`
}

// SubmitContribution records a pending contribution with default bond terms and
// refreshes the investor's provisional total. total_bonds is untouched until approval.
func (s *Service) SubmitContribution(ctx context.Context, in ContributionInput) (*Contribution, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.Validation("Amount must be a positive number.")
	}
	ok, err := s.Store.InvestorExists(ctx, in.InvestorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("Investor %d not found.", in.InvestorID)
	}
	if in.AssetID != nil {
		if _, err := s.Store.GetAsset(ctx, *in.AssetID); err != nil {
			return nil, err
		}
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx := domain.Transaction{
		InvestorID: in.InvestorID,
		AssetID:    in.AssetID,
		Amount:     in.Amount.Round(2),
		Date:       date,
		Type:       domain.TypeContribution,
		Status:     domain.StatusPending,
	}
	bond := domain.BondContribution{
		BondAmount:     tx.Amount,
		InterestRate:   s.Bond.Rate,
		MaturityMonths: s.Bond.MaturityMonths,
		StartDate:      date,
		Status:         domain.BondActive,
	}
	if err := s.Store.InsertBondContribution(ctx, &tx, &bond); err != nil {
		return nil, err
	}

	total, err := s.Aggregates.Recompute(ctx, in.InvestorID, domain.PolicyAllNonRejected)
	if err != nil {
		log.Warn().Err(err).Uint("investor_id", in.InvestorID).Uint("transaction_id", tx.ID).
			Msg("contribution stored but total_contributions recompute failed; run reconcile for this investor")
		return nil, domain.StoreFailure("recompute after contribution", err)
	}

	ledger.Emit(ctx, s.Events, ledger.NewEvent(ledger.EventContributionSubmitted, map[string]interface{}{
		"transaction_id": tx.ID,
		"investor_id":    tx.InvestorID,
		"amount":         tx.Amount,
	}))
	return &Contribution{Transaction: tx, Bond: bond, TotalContributions: total}, nil
}

// ListPending returns pending transactions with investor names, newest first.
func (s *Service) ListPending(ctx context.Context) ([]domain.PendingTransaction, error) {
	return s.Store.ListPendingTransactions(ctx)
}
