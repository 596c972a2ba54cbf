package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestRate is a rate in percent valid over [StartDate, EndDate]. A nil EndDate is open-ended.
type InterestRate struct {
	ID        uint            `gorm:"column:id;primaryKey" json:"id"`
	Rate      decimal.Decimal `gorm:"column:rate;type:decimal(7,4);not null" json:"rate"`
	StartDate time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate   *time.Time      `gorm:"column:end_date" json:"end_date"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (InterestRate) TableName() string {
	return "interest_rates"
}

// Covers reports whether d falls inside the rate's interval, bounds inclusive.
func (r InterestRate) Covers(d time.Time) bool {
	if d.Before(r.StartDate) {
		return false
	}
	return r.EndDate == nil || !d.After(*r.EndDate)
}

// Penalty is a standalone append-only debit record, outside the transaction state machine.
type Penalty struct {
	ID         uint            `gorm:"column:id;primaryKey" json:"id"`
	InvestorID uint            `gorm:"column:investor_id;not null;index" json:"investor_id"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Reason     string          `gorm:"column:reason" json:"reason"`
	Date       time.Time       `gorm:"column:date;not null" json:"date"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Penalty) TableName() string {
	return "penalties"
}

type PenaltyWithInvestor struct {
	Penalty
	InvestorName string `json:"investor_name"`
}
