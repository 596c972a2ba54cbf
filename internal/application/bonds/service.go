// Package bonds records bond contributions and the interest paid on them.
package bonds

import (
	"context"
	"errors"
	"time"

	"bondbook-backend/internal/application/aggregates"
	"bondbook-backend/internal/application/ledger"
	"bondbook-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB         *gorm.DB
	Store      ledger.Store
	Aggregates *aggregates.Service
}

// CreateInput is an administrator-entered bond. The contribution is recorded as
// already approved.
type CreateInput struct {
	InvestorID     uint
	Amount         decimal.Decimal
	InterestRate   decimal.Decimal
	MaturityMonths int
	StartDate      time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.BondContribution, error) {
	if in.InvestorID == 0 {
		return nil, domain.Validation("investor_id is required.")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.Validation("Bond amount must be a positive number.")
	}
	if in.InterestRate.IsNegative() {
		return nil, domain.Validation("Interest rate cannot be negative.")
	}
	if in.MaturityMonths <= 0 {
		return nil, domain.Validation("Maturity must be at least one month.")
	}
	if in.StartDate.IsZero() {
		return nil, domain.Validation("start_date is required.")
	}
	ok, err := s.Store.InvestorExists(ctx, in.InvestorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("Investor %d not found.", in.InvestorID)
	}

	tx := domain.Transaction{
		InvestorID: in.InvestorID,
		Amount:     in.Amount.Round(2),
		Date:       in.StartDate,
		Type:       domain.TypeContribution,
		Status:     domain.StatusApproved,
	}
	bond := domain.BondContribution{
		BondAmount:     tx.Amount,
		InterestRate:   in.InterestRate,
		MaturityMonths: in.MaturityMonths,
		StartDate:      in.StartDate,
		Status:         domain.BondActive,
	}
	if err := s.Store.InsertBondContribution(ctx, &tx, &bond); err != nil {
		return nil, err
	}
	if _, err := s.Aggregates.RecomputeAll(ctx, in.InvestorID); err != nil {
		log.Warn().Err(err).Uint("investor_id", in.InvestorID).Uint("bond_id", bond.ID).
			Msg("bond stored but aggregate recompute failed; run reconcile for this investor")
		return nil, domain.StoreFailure("recompute after bond", err)
	}
	return &bond, nil
}

// List returns every bond with its investor's name, latest start first.
func (s *Service) List(ctx context.Context) ([]domain.BondWithInvestor, error) {
	var rows []domain.BondWithInvestor
	err := s.DB.WithContext(ctx).
		Table("bond_contributions AS b").
		Select("b.*, i.name AS investor_name").
		Joins("JOIN investors i ON b.investor_id = i.id").
		Order("b.start_date DESC, b.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.StoreFailure("list bonds", err)
	}
	return rows, nil
}

// AddInterest pays interest on a bond as an approved interest row and marks the
// bond matured. A matured bond cannot be paid again.
func (s *Service) AddInterest(ctx context.Context, bondID uint, amount decimal.Decimal, date time.Time) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.Validation("Interest amount must be a positive number.")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	var bond domain.BondContribution
	if err := s.DB.WithContext(ctx).Where("id = ?", bondID).First(&bond).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("Bond not found.")
		}
		return nil, domain.StoreFailure("get bond", err)
	}
	if bond.Status == domain.BondMatured {
		return nil, domain.InvalidState("Bond %d has already matured.", bond.ID)
	}

	tx := domain.Transaction{
		InvestorID: bond.InvestorID,
		Amount:     amount.Round(2),
		Date:       date,
		Type:       domain.TypeInterest,
		Status:     domain.StatusApproved,
	}
	err := s.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		res := db.Model(&domain.BondContribution{}).
			Where("id = ? AND status = ?", bond.ID, domain.BondActive).
			Update("status", domain.BondMatured)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errBondMatured
		}
		return db.Create(&tx).Error
	})
	if errors.Is(err, errBondMatured) {
		return nil, domain.InvalidState("Bond %d has already matured.", bond.ID)
	}
	if err != nil {
		return nil, domain.StoreFailure("add bond interest", err)
	}
	if _, err := s.Aggregates.RecomputeAll(ctx, bond.InvestorID); err != nil {
		log.Warn().Err(err).Uint("investor_id", bond.InvestorID).Uint("bond_id", bond.ID).
			Msg("bond interest stored but aggregate recompute failed; run reconcile for this investor")
		return nil, domain.StoreFailure("recompute after bond interest", err)
	}
	return &tx, nil
}

var errBondMatured = errors.New("bond matured concurrently")
