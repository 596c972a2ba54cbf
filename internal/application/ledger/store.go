// Package ledger defines the persistence and event contracts the core services depend on.
package ledger

import (
	"context"

	"bondbook-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Store is the ledger persistence boundary. Every method is a single statement or a
// single store-side transaction; callers compose them without a wrapping transaction.
type Store interface {
	GetTransaction(ctx context.Context, id uint) (*domain.Transaction, error)
	// SetTransactionStatus is conditional on the row still being pending.
	SetTransactionStatus(ctx context.Context, id uint, status domain.TransactionStatus) error
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	ListPendingTransactions(ctx context.Context) ([]domain.PendingTransaction, error)
	// InsertBondContribution writes tx and the bond terms linked to it in one transaction.
	InsertBondContribution(ctx context.Context, tx *domain.Transaction, bond *domain.BondContribution) error

	// SumTransactionAmounts sums contribution and interest rows of an investor whose
	// status is counted by policy. Absent rows sum to zero.
	SumTransactionAmounts(ctx context.Context, investorID uint, policy domain.AggregatePolicy) (decimal.Decimal, error)
	// InvestorWeights returns investor id -> stored aggregate for policy, for every investor.
	InvestorWeights(ctx context.Context, policy domain.AggregatePolicy) (map[uint]decimal.Decimal, error)
	SetInvestorAggregate(ctx context.Context, investorID uint, policy domain.AggregatePolicy, value decimal.Decimal) error
	InvestorExists(ctx context.Context, investorID uint) (bool, error)
	ListInvestorIDs(ctx context.Context) ([]uint, error)

	GetAsset(ctx context.Context, id uint) (*domain.Asset, error)
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	CreateAssetWithOwnerships(ctx context.Context, asset *domain.Asset, owners []domain.Ownership) error
	UpdateAsset(ctx context.Context, asset *domain.Asset, owners []domain.Ownership) error
	GetOwnerships(ctx context.Context, assetID uint) ([]domain.Ownership, error)
	SetOwnerships(ctx context.Context, assetID uint, owners []domain.Ownership) error
	// ApprovedAssetSums returns per-investor sums of approved non-penalty rows
	// referencing assetID, with investor names. Investors with a zero sum are omitted.
	ApprovedAssetSums(ctx context.Context, assetID uint) ([]domain.InvestorSum, error)
	InvestorNames(ctx context.Context, ids []uint) (map[uint]string, error)

	// RecordDistribution writes the run and all of its ledger rows, or nothing.
	RecordDistribution(ctx context.Context, run *domain.DistributionRun, txs []domain.Transaction) error
}
