// Package rates manages interest rate periods and investor penalties.
package rates

import (
	"context"
	"sort"
	"strings"
	"time"

	"bondbook-backend/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ApplicableRate returns the rate whose interval covers d. When several cover it,
// the one that started most recently wins. ok is false when none applies.
func ApplicableRate(rates []domain.InterestRate, d time.Time) (rate domain.InterestRate, ok bool) {
	for _, r := range rates {
		if !r.Covers(d) {
			continue
		}
		if !ok || r.StartDate.After(rate.StartDate) || (r.StartDate.Equal(rate.StartDate) && r.ID > rate.ID) {
			rate, ok = r, true
		}
	}
	return rate, ok
}

type RateInput struct {
	Rate      decimal.Decimal
	StartDate time.Time
	EndDate   *time.Time
}

func (s *Service) CreateRate(ctx context.Context, in RateInput) (*domain.InterestRate, error) {
	if in.Rate.IsNegative() {
		return nil, domain.Validation("Rate cannot be negative.")
	}
	if in.StartDate.IsZero() {
		return nil, domain.Validation("start_date is required.")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, domain.Validation("end_date must not be before start_date.")
	}
	r := domain.InterestRate{Rate: in.Rate, StartDate: in.StartDate, EndDate: in.EndDate}
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, domain.StoreFailure("create interest rate", err)
	}
	return &r, nil
}

// ListRates returns every rate, latest start first.
func (s *Service) ListRates(ctx context.Context) ([]domain.InterestRate, error) {
	var out []domain.InterestRate
	if err := s.DB.WithContext(ctx).Order("start_date DESC, id DESC").Find(&out).Error; err != nil {
		return nil, domain.StoreFailure("list interest rates", err)
	}
	return out, nil
}

// RatesOverlapping returns the rates whose interval intersects [from, to].
func (s *Service) RatesOverlapping(ctx context.Context, from, to time.Time) ([]domain.InterestRate, error) {
	var out []domain.InterestRate
	err := s.DB.WithContext(ctx).
		Where("start_date <= ? AND (end_date IS NULL OR end_date >= ?)", to, from).
		Find(&out).Error
	if err != nil {
		return nil, domain.StoreFailure("list interest rates", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

type PenaltyInput struct {
	InvestorID uint
	Amount     decimal.Decimal
	Reason     string
	Date       time.Time
}

// CreatePenalty appends a penalty record. Penalties never enter the transaction
// ledger or the investor aggregates.
func (s *Service) CreatePenalty(ctx context.Context, in PenaltyInput) (*domain.Penalty, error) {
	if in.InvestorID == 0 {
		return nil, domain.Validation("investor_id is required.")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.Validation("Penalty amount must be a positive number.")
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Investor{}).Where("id = ?", in.InvestorID).Count(&n).Error; err != nil {
		return nil, domain.StoreFailure("check investor", err)
	}
	if n == 0 {
		return nil, domain.NotFound("Investor %d not found.", in.InvestorID)
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	p := domain.Penalty{
		InvestorID: in.InvestorID,
		Amount:     in.Amount.Round(2),
		Reason:     strings.TrimSpace(in.Reason),
		Date:       date,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, domain.StoreFailure("create penalty", err)
	}
	return &p, nil
}

// ListPenalties returns penalties with investor names, latest first.
func (s *Service) ListPenalties(ctx context.Context) ([]domain.PenaltyWithInvestor, error) {
	var out []domain.PenaltyWithInvestor
	err := s.DB.WithContext(ctx).
		Table("penalties AS p").
		Select("p.*, i.name AS investor_name").
		Joins("JOIN investors i ON p.investor_id = i.id").
		Order("p.date DESC, p.id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, domain.StoreFailure("list penalties", err)
	}
	return out, nil
}
