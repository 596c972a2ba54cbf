package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type DistributionKind string

const (
	DistributionInterest DistributionKind = "interest"
)

// DistributionRun records one administrative fan-out. Remainder is Total minus the
// sum of rounded shares and is kept as-is, never redistributed.
type DistributionRun struct {
	ID            uint             `gorm:"column:id;primaryKey" json:"id"`
	Kind          DistributionKind `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	Total         decimal.Decimal  `gorm:"column:total;type:decimal(18,2);not null" json:"total"`
	Distributed   decimal.Decimal  `gorm:"column:distributed;type:decimal(18,2);not null" json:"distributed"`
	Remainder     decimal.Decimal  `gorm:"column:remainder;type:decimal(18,4);not null" json:"remainder"`
	Beneficiaries int              `gorm:"column:beneficiaries;not null" json:"beneficiaries"`
	Date          time.Time        `gorm:"column:date;not null" json:"date"`
	Summary       datatypes.JSON   `gorm:"column:summary" json:"summary"`
	CreatedAt     time.Time        `gorm:"column:created_at" json:"created_at"`
}

func (DistributionRun) TableName() string {
	return "distribution_runs"
}
