package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Asset struct {
	ID        uint            `gorm:"column:id;primaryKey" json:"id"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	Value     decimal.Decimal `gorm:"column:value;type:decimal(18,2);not null" json:"value"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Asset) TableName() string {
	return "assets"
}

// Ownership stores a percentage only; the absolute amount is derived from the asset value at read time.
type Ownership struct {
	ID         uint            `gorm:"column:id;primaryKey" json:"-"`
	AssetID    uint            `gorm:"column:asset_id;not null;index" json:"asset_id"`
	InvestorID uint            `gorm:"column:investor_id;not null;index" json:"investor_id"`
	Percentage decimal.Decimal `gorm:"column:percentage;type:decimal(5,2);not null" json:"percentage"`
}

func (Ownership) TableName() string {
	return "asset_ownership"
}

// OwnerShare is one projected (investor, percentage, amount) tuple.
type OwnerShare struct {
	InvestorID uint            `json:"investor_id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// AssetOwnership is an asset together with its projected owners.
type AssetOwnership struct {
	Asset
	Ownerships []OwnerShare `json:"ownerships"`
}

// InvestorSum is a per-investor sum used by the derived ownership source.
type InvestorSum struct {
	InvestorID uint
	Name       string
	Total      decimal.Decimal
}
