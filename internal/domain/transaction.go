package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusRejected TransactionStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s TransactionStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseTargetStatus accepts only the statuses an administrator may transition to.
func ParseTargetStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(strings.TrimSpace(s)) {
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", Validation("Invalid status.")
}

type TransactionType string

const (
	TypeContribution TransactionType = "contribution"
	TypeInterest     TransactionType = "interest"
	TypePenalty      TransactionType = "penalty"
)

// CountsTowardAggregate is true for the types summed into investor aggregates.
func (t TransactionType) CountsTowardAggregate() bool {
	return t == TypeContribution || t == TypeInterest
}

// Transaction is one ledger row owned by an investor.
type Transaction struct {
	ID         uint              `gorm:"column:id;primaryKey" json:"id"`
	InvestorID uint              `gorm:"column:investor_id;not null;index" json:"investor_id"`
	AssetID    *uint             `gorm:"column:asset_id;index" json:"asset_id"`
	Amount     decimal.Decimal   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Date       time.Time         `gorm:"column:date;not null" json:"date"`
	Type       TransactionType   `gorm:"column:type;type:varchar(20);not null;default:'contribution'" json:"type"`
	Status     TransactionStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// PendingTransaction is a pending row joined with its investor's name.
type PendingTransaction struct {
	Transaction
	InvestorName string `json:"investor_name"`
}
