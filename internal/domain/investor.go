package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvestorStatus string

const (
	InvestorActive      InvestorStatus = "active"
	InvestorSuspended   InvestorStatus = "suspended"
	InvestorDeactivated InvestorStatus = "deactivated"
)

func ParseInvestorStatus(s string) (InvestorStatus, error) {
	switch InvestorStatus(s) {
	case InvestorActive, InvestorSuspended, InvestorDeactivated:
		return InvestorStatus(s), nil
	}
	return "", Validation("Invalid status.")
}

// Investor matches the investors table. TotalBonds and TotalContributions are
// written only by the aggregate recalculator.
type Investor struct {
	ID                 uint            `gorm:"column:id;primaryKey" json:"id"`
	Name               string          `gorm:"column:name;not null" json:"name"`
	Email              string          `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash       string          `gorm:"column:password_hash" json:"-"`
	Status             InvestorStatus  `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	TotalContributions decimal.Decimal `gorm:"column:total_contributions;type:decimal(18,2);not null;default:0" json:"total_contributions"`
	TotalBonds         decimal.Decimal `gorm:"column:total_bonds;type:decimal(18,2);not null;default:0" json:"total_bonds"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Investor) TableName() string {
	return "investors"
}

// Aggregate returns the stored value for policy p.
func (i Investor) Aggregate(p AggregatePolicy) decimal.Decimal {
	if p == PolicyAllNonRejected {
		return i.TotalContributions
	}
	return i.TotalBonds
}

// Admin is a back-office operator account.
type Admin struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;not null" json:"username"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Admin) TableName() string {
	return "admins"
}
