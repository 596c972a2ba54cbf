// Package investors manages investor accounts and the investor dashboard.
package investors

import (
	"context"
	"errors"
	"strings"

	"bondbook-backend/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// CreateInput is validated by the handler before it reaches the service.
type CreateInput struct {
	Name     string `json:"name" validate:"required,person_name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateInput carries optional fields; nil means unchanged.
type UpdateInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Summary is an investor row without credentials.
type Summary struct {
	ID                 uint                  `json:"id"`
	Name               string                `json:"name"`
	Email              string                `json:"email"`
	Status             domain.InvestorStatus `json:"status"`
	TotalBonds         decimal.Decimal       `json:"total_bonds"`
	TotalContributions decimal.Decimal       `json:"total_contributions"`
}

func summaryOf(i domain.Investor) Summary {
	return Summary{
		ID:                 i.ID,
		Name:               i.Name,
		Email:              i.Email,
		Status:             i.Status,
		TotalBonds:         i.TotalBonds,
		TotalContributions: i.TotalContributions,
	}
}

func (s *Service) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var n int64
	q := s.DB.WithContext(ctx).Model(&domain.Investor{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, domain.StoreFailure("check investor email", err)
	}
	return n > 0, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Summary, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taken, err := s.emailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Validation("Email already registered.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	inv := domain.Investor{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Status:       domain.InvestorActive,
	}
	if err := s.DB.WithContext(ctx).Create(&inv).Error; err != nil {
		return nil, domain.StoreFailure("create investor", err)
	}
	out := summaryOf(inv)
	return &out, nil
}

func (s *Service) find(ctx context.Context, id uint) (*domain.Investor, error) {
	var inv domain.Investor
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("Investor not found.")
		}
		return nil, domain.StoreFailure("get investor", err)
	}
	return &inv, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Summary, error) {
	inv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := summaryOf(*inv)
	return &out, nil
}

// Update changes name and/or email. Aggregates are never touched here.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*Summary, error) {
	updates := map[string]interface{}{}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		taken, err := s.emailTaken(ctx, email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.Validation("Email already registered.")
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return nil, domain.InvalidState("No fields to update.")
	}
	inv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(inv).Updates(updates).Error; err != nil {
		return nil, domain.StoreFailure("update investor", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, id uint, status string) (*Summary, error) {
	st, err := domain.ParseInvestorStatus(status)
	if err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&domain.Investor{}).Where("id = ?", id).Update("status", st)
	if res.Error != nil {
		return nil, domain.StoreFailure("set investor status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NotFound("Investor not found.")
	}
	return s.Get(ctx, id)
}

// Delete removes an investor with no ledger history. Investors with
// transactions must be deactivated instead.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Transaction{}).Where("investor_id = ?", id).Count(&n).Error; err != nil {
		return domain.StoreFailure("count investor transactions", err)
	}
	if n > 0 {
		return domain.InvalidState("Investor has ledger history; deactivate instead.")
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("investor_id = ?", id).Delete(&domain.Ownership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("investor_id = ?", id).Delete(&domain.Penalty{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Investor{}, id).Error
	})
	if err != nil {
		return domain.StoreFailure("delete investor", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	var rows []domain.Investor
	if err := s.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, domain.StoreFailure("list investors", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, summaryOf(r))
	}
	return out, nil
}

// Transactions returns an investor's ledger rows, newest first.
func (s *Service) Transactions(ctx context.Context, id uint) ([]domain.Transaction, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	var txs []domain.Transaction
	if err := s.DB.WithContext(ctx).Where("investor_id = ?", id).Order("date DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, domain.StoreFailure("list investor transactions", err)
	}
	return txs, nil
}

// Dashboard is the investor's own view.
type Dashboard struct {
	Summary
	PercentageShare decimal.Decimal      `json:"percentage_share"`
	Transactions    []domain.Transaction `json:"transactions"`
}

// PercentageShare is the investor's total_bonds over the sum of everyone's
// total_bonds, in percent with two places. Zero when nobody is funded.
func PercentageShare(own, all decimal.Decimal) decimal.Decimal {
	if !all.IsPositive() {
		return decimal.Zero
	}
	return own.Mul(decimal.NewFromInt(100)).DivRound(all, 8).Round(2)
}

func (s *Service) Dashboard(ctx context.Context, id uint) (*Dashboard, error) {
	inv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	var total struct{ Total decimal.NullDecimal }
	if err := s.DB.WithContext(ctx).Model(&domain.Investor{}).Select("SUM(total_bonds) AS total").Scan(&total).Error; err != nil {
		return nil, domain.StoreFailure("sum total bonds", err)
	}
	txs, err := s.Transactions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Summary:         summaryOf(*inv),
		PercentageShare: PercentageShare(inv.TotalBonds, total.Total.Decimal),
		Transactions:    txs,
	}, nil
}
