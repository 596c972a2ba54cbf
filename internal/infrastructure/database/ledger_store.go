package database

import (
	"context"
	"errors"

	"bondbook-backend/internal/application/ledger"
	"bondbook-backend/internal/domain"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var _ ledger.Store = (*LedgerStore)(nil)

// LedgerStore implements ledger.Store on GORM.
type LedgerStore struct {
	DB *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{DB: db}
}

func notFoundOr(err error, op, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound("%s %d not found.", what, id)
	}
	return domain.StoreFailure(op, err)
}

func (s *LedgerStore) GetTransaction(ctx context.Context, id uint) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		return nil, notFoundOr(err, "get transaction", "Transaction", id)
	}
	return &tx, nil
}

// SetTransactionStatus only moves a pending row. A row that is already terminal
// is reported as InvalidState with its current status.
func (s *LedgerStore) SetTransactionStatus(ctx context.Context, id uint, status domain.TransactionStatus) error {
	res := s.DB.WithContext(ctx).Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("status", status)
	if res.Error != nil {
		return domain.StoreFailure("set transaction status", res.Error)
	}
	if res.RowsAffected == 0 {
		current, err := s.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		return domain.InvalidState("Transaction %d is already %s.", id, current.Status)
	}
	return nil
}

func (s *LedgerStore) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	if err := s.DB.WithContext(ctx).Create(tx).Error; err != nil {
		return domain.StoreFailure("insert transaction", err)
	}
	return nil
}

func (s *LedgerStore) InsertBondContribution(ctx context.Context, t *domain.Transaction, bond *domain.BondContribution) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		bond.InvestorID = t.InvestorID
		bond.TransactionID = &t.ID
		return tx.Create(bond).Error
	})
	if err != nil {
		return domain.StoreFailure("insert bond contribution", err)
	}
	return nil
}

func (s *LedgerStore) ListPendingTransactions(ctx context.Context) ([]domain.PendingTransaction, error) {
	var rows []domain.PendingTransaction
	err := s.DB.WithContext(ctx).
		Table("transactions AS t").
		Select("t.*, i.name AS investor_name").
		Joins("JOIN investors i ON t.investor_id = i.id").
		Where("t.status = ?", domain.StatusPending).
		Order("t.created_at DESC, t.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.StoreFailure("list pending transactions", err)
	}
	return rows, nil
}

type sumRow struct {
	Total decimal.NullDecimal
}

func (s *LedgerStore) SumTransactionAmounts(ctx context.Context, investorID uint, policy domain.AggregatePolicy) (decimal.Decimal, error) {
	if err := policy.Validate(); err != nil {
		return decimal.Zero, err
	}
	var row sumRow
	err := s.DB.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("SUM(amount) AS total").
		Where("investor_id = ? AND status IN ? AND type IN ?", investorID, policy.Statuses(),
			[]domain.TransactionType{domain.TypeContribution, domain.TypeInterest}).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, domain.StoreFailure("sum transaction amounts", err)
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal.Round(2), nil
}

func (s *LedgerStore) InvestorWeights(ctx context.Context, policy domain.AggregatePolicy) (map[uint]decimal.Decimal, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	var investors []domain.Investor
	if err := s.DB.WithContext(ctx).Select("id", policy.Column()).Find(&investors).Error; err != nil {
		return nil, domain.StoreFailure("investor weights", err)
	}
	return lo.SliceToMap(investors, func(i domain.Investor) (uint, decimal.Decimal) {
		return i.ID, i.Aggregate(policy)
	}), nil
}

func (s *LedgerStore) SetInvestorAggregate(ctx context.Context, investorID uint, policy domain.AggregatePolicy, value decimal.Decimal) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&domain.Investor{}).Where("id = ?", investorID).Update(policy.Column(), value)
	if res.Error != nil {
		return domain.StoreFailure("set investor aggregate", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Investor %d not found.", investorID)
	}
	return nil
}

func (s *LedgerStore) InvestorExists(ctx context.Context, investorID uint) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Investor{}).Where("id = ?", investorID).Count(&n).Error; err != nil {
		return false, domain.StoreFailure("investor exists", err)
	}
	return n > 0, nil
}

func (s *LedgerStore) ListInvestorIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.DB.WithContext(ctx).Model(&domain.Investor{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, domain.StoreFailure("list investor ids", err)
	}
	return ids, nil
}

func (s *LedgerStore) InvestorNames(ctx context.Context, ids []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var investors []domain.Investor
	if err := s.DB.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&investors).Error; err != nil {
		return nil, domain.StoreFailure("investor names", err)
	}
	for _, i := range investors {
		out[i.ID] = i.Name
	}
	return out, nil
}

func (s *LedgerStore) GetAsset(ctx context.Context, id uint) (*domain.Asset, error) {
	var a domain.Asset
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFoundOr(err, "get asset", "Asset", id)
	}
	return &a, nil
}

func (s *LedgerStore) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	if err := s.DB.WithContext(ctx).Order("name, id").Find(&assets).Error; err != nil {
		return nil, domain.StoreFailure("list assets", err)
	}
	return assets, nil
}

func (s *LedgerStore) CreateAssetWithOwnerships(ctx context.Context, asset *domain.Asset, owners []domain.Ownership) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(asset).Error; err != nil {
			return err
		}
		return insertOwnerships(tx, asset.ID, owners)
	})
	if err != nil {
		return domain.StoreFailure("create asset", err)
	}
	return nil
}

func (s *LedgerStore) UpdateAsset(ctx context.Context, asset *domain.Asset, owners []domain.Ownership) error {
	var missing bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Asset{}).Where("id = ?", asset.ID).Updates(map[string]interface{}{
			"name":  asset.Name,
			"value": asset.Value,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			missing = true
			return gorm.ErrRecordNotFound
		}
		return replaceOwnerships(tx, asset.ID, owners)
	})
	if missing {
		return domain.NotFound("Asset %d not found.", asset.ID)
	}
	if err != nil {
		return domain.StoreFailure("update asset", err)
	}
	return nil
}

func (s *LedgerStore) GetOwnerships(ctx context.Context, assetID uint) ([]domain.Ownership, error) {
	var owners []domain.Ownership
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).Order("investor_id").Find(&owners).Error; err != nil {
		return nil, domain.StoreFailure("get ownerships", err)
	}
	return owners, nil
}

func (s *LedgerStore) SetOwnerships(ctx context.Context, assetID uint, owners []domain.Ownership) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceOwnerships(tx, assetID, owners)
	})
	if err != nil {
		return domain.StoreFailure("set ownerships", err)
	}
	return nil
}

func replaceOwnerships(tx *gorm.DB, assetID uint, owners []domain.Ownership) error {
	if err := tx.Where("asset_id = ?", assetID).Delete(&domain.Ownership{}).Error; err != nil {
		return err
	}
	return insertOwnerships(tx, assetID, owners)
}

func insertOwnerships(tx *gorm.DB, assetID uint, owners []domain.Ownership) error {
	if len(owners) == 0 {
		return nil
	}
	rows := lo.Map(owners, func(o domain.Ownership, _ int) domain.Ownership {
		return domain.Ownership{AssetID: assetID, InvestorID: o.InvestorID, Percentage: o.Percentage}
	})
	return tx.Create(&rows).Error
}

type assetSumRow struct {
	InvestorID uint
	Name       string
	Total      decimal.Decimal
}

func (s *LedgerStore) ApprovedAssetSums(ctx context.Context, assetID uint) ([]domain.InvestorSum, error) {
	var rows []assetSumRow
	err := s.DB.WithContext(ctx).
		Table("transactions AS t").
		Select("t.investor_id AS investor_id, i.name AS name, SUM(t.amount) AS total").
		Joins("JOIN investors i ON t.investor_id = i.id").
		Where("t.asset_id = ? AND t.status = ? AND t.type <> ?", assetID, domain.StatusApproved, domain.TypePenalty).
		Group("t.investor_id, i.name").
		Having("SUM(t.amount) > 0").
		Order("i.name, t.investor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.StoreFailure("approved asset sums", err)
	}
	return lo.Map(rows, func(r assetSumRow, _ int) domain.InvestorSum {
		return domain.InvestorSum{InvestorID: r.InvestorID, Name: r.Name, Total: r.Total.Round(2)}
	}), nil
}

func (s *LedgerStore) RecordDistribution(ctx context.Context, run *domain.DistributionRun, txs []domain.Transaction) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(txs) > 0 {
			if err := tx.Create(&txs).Error; err != nil {
				return err
			}
		}
		return tx.Create(run).Error
	})
	if err != nil {
		return domain.StoreFailure("record distribution", err)
	}
	return nil
}
