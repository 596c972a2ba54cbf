package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BondStatus string

const (
	BondActive  BondStatus = "active"
	BondMatured BondStatus = "matured"
)

// BondContribution records the terms of a contribution; its money lives in the linked transaction.
type BondContribution struct {
	ID             uint            `gorm:"column:id;primaryKey" json:"id"`
	InvestorID     uint            `gorm:"column:investor_id;not null;index" json:"investor_id"`
	TransactionID  *uint           `gorm:"column:transaction_id" json:"transaction_id"`
	BondAmount     decimal.Decimal `gorm:"column:bond_amount;type:decimal(18,2);not null" json:"bond_amount"`
	InterestRate   decimal.Decimal `gorm:"column:interest_rate;type:decimal(7,4);not null" json:"interest_rate"`
	MaturityMonths int             `gorm:"column:maturity_months;not null" json:"maturity_months"`
	StartDate      time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	Status         BondStatus      `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (BondContribution) TableName() string {
	return "bond_contributions"
}

// MaturityDate is StartDate plus MaturityMonths.
func (b BondContribution) MaturityDate() time.Time {
	return b.StartDate.AddDate(0, b.MaturityMonths, 0)
}

type BondWithInvestor struct {
	BondContribution
	InvestorName string `json:"investor_name"`
}
