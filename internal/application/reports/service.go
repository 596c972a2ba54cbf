// Package reports builds read-only summaries over the ledger.
package reports

import (
	"context"
	"sort"
	"time"

	"bondbook-backend/internal/application/rates"
	"bondbook-backend/internal/domain"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Service groups in Go rather than SQL so the same code runs on Postgres and SQLite.
type Service struct {
	DB    *gorm.DB
	Rates *rates.Service
}

// PeriodTotal is an approved contribution total for a year or a month.
type PeriodTotal struct {
	Year  int             `json:"year"`
	Month int             `json:"month,omitempty"`
	Total decimal.Decimal `json:"total"`
}

func (s *Service) approvedContributions(ctx context.Context) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.DB.WithContext(ctx).
		Where("status = ? AND type = ?", domain.StatusApproved, domain.TypeContribution).
		Order("date ASC, id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, domain.StoreFailure("list approved contributions", err)
	}
	return txs, nil
}

func sumAmounts(txs []domain.Transaction) decimal.Decimal {
	return lo.Reduce(txs, func(acc decimal.Decimal, t domain.Transaction, _ int) decimal.Decimal {
		return acc.Add(t.Amount)
	}, decimal.Zero).Round(2)
}

// YearlyContributions totals approved contributions by the year of their date.
func (s *Service) YearlyContributions(ctx context.Context) ([]PeriodTotal, error) {
	txs, err := s.approvedContributions(ctx)
	if err != nil {
		return nil, err
	}
	groups := lo.GroupBy(txs, func(t domain.Transaction) int { return t.Date.Year() })
	out := make([]PeriodTotal, 0, len(groups))
	for year, rows := range groups {
		out = append(out, PeriodTotal{Year: year, Total: sumAmounts(rows)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// MonthlyContributions totals approved contributions by year and month.
func (s *Service) MonthlyContributions(ctx context.Context) ([]PeriodTotal, error) {
	txs, err := s.approvedContributions(ctx)
	if err != nil {
		return nil, err
	}
	groups := lo.GroupBy(txs, func(t domain.Transaction) int { return t.Date.Year()*100 + int(t.Date.Month()) })
	out := make([]PeriodTotal, 0, len(groups))
	for key, rows := range groups {
		out = append(out, PeriodTotal{Year: key / 100, Month: key % 100, Total: sumAmounts(rows)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

// TotalAssetValue sums the value of every asset.
func (s *Service) TotalAssetValue(ctx context.Context) (decimal.Decimal, error) {
	var assets []domain.Asset
	if err := s.DB.WithContext(ctx).Select("id", "value").Find(&assets).Error; err != nil {
		return decimal.Zero, domain.StoreFailure("sum asset value", err)
	}
	return lo.Reduce(assets, func(acc decimal.Decimal, a domain.Asset, _ int) decimal.Decimal {
		return acc.Add(a.Value)
	}, decimal.Zero).Round(2), nil
}

// InvestmentLine is one approved contribution with the interest its applicable rate yields.
type InvestmentLine struct {
	ID                uint            `json:"id"`
	InvestorID        uint            `json:"investor_id"`
	InvestorName      string          `json:"investor_name"`
	Amount            decimal.Decimal `json:"amount"`
	Date              time.Time       `json:"date"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	InterestAmount    decimal.Decimal `json:"interest_amount"`
	TotalWithInterest decimal.Decimal `json:"total_with_interest"`
}

type InvestorTotal struct {
	InvestorID        uint             `json:"investor_id"`
	InvestorName      string           `json:"investor_name"`
	Transactions      []InvestmentLine `json:"transactions"`
	TotalContribution decimal.Decimal  `json:"total_contribution"`
	TotalInterest     decimal.Decimal  `json:"total_interest"`
	TotalWithInterest decimal.Decimal  `json:"total_with_interest"`
}

type InvestmentSummary struct {
	TotalContribution decimal.Decimal `json:"total_contribution"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	TotalWithInterest decimal.Decimal `json:"total_with_interest"`
}

type YearlyInvestments struct {
	Year           int               `json:"year"`
	Transactions   []InvestmentLine  `json:"transactions"`
	InvestorTotals []InvestorTotal   `json:"investor_totals"`
	Summary        InvestmentSummary `json:"summary"`
}

type lineRow struct {
	domain.Transaction
	InvestorName string
}

// YearlyInvestments lists the year's approved contributions, each priced with
// the interest rate applicable on its date (0 when none), grouped per investor.
func (s *Service) YearlyInvestments(ctx context.Context, year int) (*YearlyInvestments, error) {
	if year < 1900 || year > 9999 {
		return nil, domain.Validation("Invalid year.")
	}
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0).Add(-time.Nanosecond)

	var rows []lineRow
	err := s.DB.WithContext(ctx).
		Table("transactions AS t").
		Select("t.*, i.name AS investor_name").
		Joins("JOIN investors i ON t.investor_id = i.id").
		Where("t.status = ? AND t.type = ? AND t.date >= ? AND t.date <= ?",
			domain.StatusApproved, domain.TypeContribution, from, to).
		Order("t.date ASC, t.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.StoreFailure("yearly investments", err)
	}
	periods, err := s.Rates.RatesOverlapping(ctx, from, to)
	if err != nil {
		return nil, err
	}

	lines := lo.Map(rows, func(r lineRow, _ int) InvestmentLine {
		rate := decimal.Zero
		if applicable, ok := rates.ApplicableRate(periods, r.Date); ok {
			rate = applicable.Rate
		}
		interest := r.Amount.Mul(rate).Div(hundred).Round(2)
		return InvestmentLine{
			ID:                r.ID,
			InvestorID:        r.InvestorID,
			InvestorName:      r.InvestorName,
			Amount:            r.Amount,
			Date:              r.Date,
			InterestRate:      rate,
			InterestAmount:    interest,
			TotalWithInterest: r.Amount.Add(interest),
		}
	})

	out := &YearlyInvestments{Year: year, Transactions: lines, InvestorTotals: []InvestorTotal{}}
	byInvestor := lo.GroupBy(lines, func(l InvestmentLine) uint { return l.InvestorID })
	for id, ls := range byInvestor {
		total := InvestorTotal{InvestorID: id, InvestorName: ls[0].InvestorName, Transactions: ls}
		for _, l := range ls {
			total.TotalContribution = total.TotalContribution.Add(l.Amount)
			total.TotalInterest = total.TotalInterest.Add(l.InterestAmount)
		}
		total.TotalWithInterest = total.TotalContribution.Add(total.TotalInterest)
		out.InvestorTotals = append(out.InvestorTotals, total)

		out.Summary.TotalContribution = out.Summary.TotalContribution.Add(total.TotalContribution)
		out.Summary.TotalInterest = out.Summary.TotalInterest.Add(total.TotalInterest)
	}
	out.Summary.TotalWithInterest = out.Summary.TotalContribution.Add(out.Summary.TotalInterest)
	sort.Slice(out.InvestorTotals, func(i, j int) bool {
		return out.InvestorTotals[i].InvestorID < out.InvestorTotals[j].InvestorID
	})
	return out, nil
}

// InvestorHistory returns the investor's pending and approved rows, newest first.
func (s *Service) InvestorHistory(ctx context.Context, investorID uint) ([]domain.Transaction, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Investor{}).Where("id = ?", investorID).Count(&n).Error; err != nil {
		return nil, domain.StoreFailure("check investor", err)
	}
	if n == 0 {
		return nil, domain.NotFound("Investor not found.")
	}
	var txs []domain.Transaction
	err := s.DB.WithContext(ctx).
		Where("investor_id = ? AND status IN ?", investorID,
			[]domain.TransactionStatus{domain.StatusApproved, domain.StatusPending}).
		Order("created_at DESC, id DESC").
		Find(&txs).Error
	if err != nil {
		return nil, domain.StoreFailure("investor history", err)
	}
	return txs, nil
}
