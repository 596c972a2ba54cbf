package ownership

import (
	"context"
	"testing"
	"time"

	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOwnershipTest(t *testing.T, kind string) (*Projector, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	store := database.NewLedgerStore(db)
	src, err := NewSource(kind, store)
	require.NoError(t, err)
	return NewProjector(store, src), db
}

func seedInvestor(t *testing.T, db *gorm.DB, name string) domain.Investor {
	inv := domain.Investor{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(&inv).Error)
	return inv
}

func seedAsset(t *testing.T, db *gorm.DB, name, value string) domain.Asset {
	a := domain.Asset{Name: name, Value: decimal.RequireFromString(value)}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func seedAssetTx(t *testing.T, db *gorm.DB, investorID, assetID uint, amount string, status domain.TransactionStatus) {
	id := assetID
	require.NoError(t, db.Create(&domain.Transaction{
		InvestorID: investorID,
		AssetID:    &id,
		Amount:     decimal.RequireFromString(amount),
		Date:       time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		Type:       domain.TypeContribution,
		Status:     status,
	}).Error)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource("", nil)
	require.NoError(t, err)
	assert.Equal(t, SourceExplicit, src.Name())
	src, err = NewSource("Derived", nil)
	require.NoError(t, err)
	assert.Equal(t, SourceDerived, src.Name())
	_, err = NewSource("ledger", nil)
	assert.Error(t, err)
}

func TestDerived_ProjectsApprovedSums(t *testing.T) {
	p, db := setupOwnershipTest(t, SourceDerived)
	one := seedInvestor(t, db, "investor1")
	two := seedInvestor(t, db, "investor2")
	three := seedInvestor(t, db, "investor3")
	asset := seedAsset(t, db, "Office", "1000")
	seedAssetTx(t, db, one.ID, asset.ID, "300", domain.StatusApproved)
	seedAssetTx(t, db, two.ID, asset.ID, "700", domain.StatusApproved)
	seedAssetTx(t, db, three.ID, asset.ID, "150", domain.StatusPending)

	got, err := p.Project(context.Background(), asset.ID)
	require.NoError(t, err)
	require.Len(t, got.Ownerships, 2)
	assert.Equal(t, one.ID, got.Ownerships[0].InvestorID)
	assert.Equal(t, "30.00", got.Ownerships[0].Percentage.StringFixed(2))
	assert.Equal(t, "300.00", got.Ownerships[0].Amount.StringFixed(2))
	assert.Equal(t, two.ID, got.Ownerships[1].InvestorID)
	assert.Equal(t, "70.00", got.Ownerships[1].Percentage.StringFixed(2))
	assert.Equal(t, "700.00", got.Ownerships[1].Amount.StringFixed(2))
}

func TestDerived_OverSubscribedAssetExceeds100(t *testing.T) {
	p, db := setupOwnershipTest(t, SourceDerived)
	one := seedInvestor(t, db, "investor1")
	asset := seedAsset(t, db, "Small", "100")
	seedAssetTx(t, db, one.ID, asset.ID, "150", domain.StatusApproved)

	got, err := p.Project(context.Background(), asset.ID)
	require.NoError(t, err)
	require.Len(t, got.Ownerships, 1)
	assert.Equal(t, "150.00", got.Ownerships[0].Percentage.StringFixed(2))
}

func TestDerived_ZeroValueAssetYieldsZeroPercent(t *testing.T) {
	p, db := setupOwnershipTest(t, SourceDerived)
	one := seedInvestor(t, db, "investor1")
	asset := seedAsset(t, db, "Written off", "0")
	seedAssetTx(t, db, one.ID, asset.ID, "50", domain.StatusApproved)

	got, err := p.Project(context.Background(), asset.ID)
	require.NoError(t, err)
	require.Len(t, got.Ownerships, 1)
	assert.True(t, got.Ownerships[0].Percentage.IsZero())
}

func TestExplicit_AmountFromPercentage(t *testing.T) {
	p, db := setupOwnershipTest(t, SourceExplicit)
	one := seedInvestor(t, db, "zed")
	two := seedInvestor(t, db, "amy")
	three := seedInvestor(t, db, "nobody")
	asset := seedAsset(t, db, "Office", "1000")
	require.NoError(t, db.Create(&[]domain.Ownership{
		{AssetID: asset.ID, InvestorID: one.ID, Percentage: decimal.RequireFromString("30")},
		{AssetID: asset.ID, InvestorID: two.ID, Percentage: decimal.RequireFromString("70")},
		{AssetID: asset.ID, InvestorID: three.ID, Percentage: decimal.Zero},
	}).Error)

	got, err := p.Project(context.Background(), asset.ID)
	require.NoError(t, err)
	require.Len(t, got.Ownerships, 2)
	// ordered by name
	assert.Equal(t, "amy", got.Ownerships[0].Name)
	assert.Equal(t, "700.00", got.Ownerships[0].Amount.StringFixed(2))
	assert.Equal(t, "zed", got.Ownerships[1].Name)
	assert.Equal(t, "300.00", got.Ownerships[1].Amount.StringFixed(2))
}

func TestProject_NotFound(t *testing.T) {
	p, _ := setupOwnershipTest(t, SourceExplicit)
	_, err := p.Project(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestProjectAll_OrderedByNameAndForInvestor(t *testing.T) {
	p, db := setupOwnershipTest(t, SourceExplicit)
	one := seedInvestor(t, db, "one")
	two := seedInvestor(t, db, "two")
	b := seedAsset(t, db, "Beta", "200")
	a := seedAsset(t, db, "Alpha", "100")
	require.NoError(t, db.Create(&[]domain.Ownership{
		{AssetID: a.ID, InvestorID: one.ID, Percentage: decimal.RequireFromString("50")},
		{AssetID: b.ID, InvestorID: two.ID, Percentage: decimal.RequireFromString("100")},
	}).Error)

	all, err := p.ProjectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Beta", all[1].Name)

	mine, err := p.ForInvestor(context.Background(), one.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].AssetID)
	assert.Equal(t, "50.00", mine[0].Amount.StringFixed(2))

	none, err := p.ForInvestor(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateAsset_ReplacesOwnerships(t *testing.T) {
	p, db := setupOwnershipTest(t, SourceExplicit)
	one := seedInvestor(t, db, "one")
	two := seedInvestor(t, db, "two")
	asset := seedAsset(t, db, "Office", "1000")
	require.NoError(t, db.Create(&domain.Ownership{AssetID: asset.ID, InvestorID: one.ID, Percentage: decimal.NewFromInt(100)}).Error)

	got, err := p.UpdateAsset(context.Background(), asset.ID, "Office HQ", decimal.NewFromInt(2000), []OwnerInput{
		{InvestorID: one.ID, Percentage: decimal.NewFromInt(40)},
		{InvestorID: two.ID, Percentage: decimal.NewFromInt(60)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Office HQ", got.Name)
	require.Len(t, got.Ownerships, 2)
	assert.Equal(t, "800.00", got.Ownerships[0].Amount.StringFixed(2))
	assert.Equal(t, "1200.00", got.Ownerships[1].Amount.StringFixed(2))

	var n int64
	require.NoError(t, db.Model(&domain.Ownership{}).Where("asset_id = ?", asset.ID).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestUpdateAsset_Validation(t *testing.T) {
	p, db := setupOwnershipTest(t, SourceExplicit)
	one := seedInvestor(t, db, "one")
	two := seedInvestor(t, db, "two")
	asset := seedAsset(t, db, "Office", "1000")
	ctx := context.Background()

	_, err := p.UpdateAsset(ctx, asset.ID, "Office", decimal.NewFromInt(1000), []OwnerInput{
		{InvestorID: one.ID, Percentage: decimal.NewFromInt(60)},
		{InvestorID: two.ID, Percentage: decimal.NewFromInt(41)},
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = p.UpdateAsset(ctx, asset.ID, "Office", decimal.NewFromInt(1000), []OwnerInput{
		{InvestorID: one.ID, Percentage: decimal.NewFromInt(-1)},
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = p.UpdateAsset(ctx, asset.ID, "", decimal.NewFromInt(1000), nil)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = p.UpdateAsset(ctx, asset.ID, "Office", decimal.NewFromInt(1000), []OwnerInput{
		{InvestorID: 999, Percentage: decimal.NewFromInt(10)},
	})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = p.UpdateAsset(ctx, 999, "Ghost", decimal.NewFromInt(10), nil)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
