package bonds

import (
	"context"
	"testing"
	"time"

	"bondbook-backend/internal/application/aggregates"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupBondsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	store := database.NewLedgerStore(db)
	return &Service{DB: db, Store: store, Aggregates: aggregates.NewService(store, 1)}, db
}

func seedInvestor(t *testing.T, db *gorm.DB, name string) domain.Investor {
	inv := domain.Investor{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(&inv).Error)
	return inv
}

func TestCreate_ApprovedContributionAndRecompute(t *testing.T) {
	s, db := setupBondsTest(t)
	inv := seedInvestor(t, db, "alice")
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	bond, err := s.Create(context.Background(), CreateInput{
		InvestorID:     inv.ID,
		Amount:         decimal.NewFromInt(1000),
		InterestRate:   decimal.RequireFromString("6.5"),
		MaturityMonths: 24,
		StartDate:      start,
	})
	require.NoError(t, err)
	require.NotNil(t, bond.TransactionID)
	assert.Equal(t, start.AddDate(2, 0, 0), bond.MaturityDate())

	var tx domain.Transaction
	require.NoError(t, db.First(&tx, *bond.TransactionID).Error)
	assert.Equal(t, domain.StatusApproved, tx.Status)

	var got domain.Investor
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, "1000.00", got.TotalBonds.StringFixed(2))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].InvestorName)
}

func TestCreate_Validation(t *testing.T) {
	s, db := setupBondsTest(t)
	inv := seedInvestor(t, db, "bob")
	start := time.Now()

	_, err := s.Create(context.Background(), CreateInput{InvestorID: inv.ID, Amount: decimal.Zero, MaturityMonths: 12, StartDate: start})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = s.Create(context.Background(), CreateInput{InvestorID: inv.ID, Amount: decimal.NewFromInt(1), MaturityMonths: 0, StartDate: start})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = s.Create(context.Background(), CreateInput{InvestorID: 404, Amount: decimal.NewFromInt(1), MaturityMonths: 12, StartDate: start})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestAddInterest_MaturesBondOnce(t *testing.T) {
	s, db := setupBondsTest(t)
	inv := seedInvestor(t, db, "carol")
	bond, err := s.Create(context.Background(), CreateInput{
		InvestorID: inv.ID, Amount: decimal.NewFromInt(500), InterestRate: decimal.NewFromInt(5),
		MaturityMonths: 12, StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	tx, err := s.AddInterest(context.Background(), bond.ID, decimal.NewFromInt(25), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, domain.TypeInterest, tx.Type)
	assert.Equal(t, domain.StatusApproved, tx.Status)

	var got domain.Investor
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, "525.00", got.TotalBonds.StringFixed(2))

	var b domain.BondContribution
	require.NoError(t, db.First(&b, bond.ID).Error)
	assert.Equal(t, domain.BondMatured, b.Status)

	_, err = s.AddInterest(context.Background(), bond.ID, decimal.NewFromInt(25), time.Time{})
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	_, err = s.AddInterest(context.Background(), 999, decimal.NewFromInt(25), time.Time{})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
