package investors

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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupInvestorsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func strPtr(s string) *string { return &s }

func TestCreate_HashesPasswordAndRejectsDuplicateEmail(t *testing.T) {
	s, db := setupInvestorsTest(t)
	out, err := s.Create(context.Background(), CreateInput{Name: "Ann Lee", Email: "Ann@Example.com", Password: "s3cret!!"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", out.Email)
	assert.Equal(t, domain.InvestorActive, out.Status)

	var inv domain.Investor
	require.NoError(t, db.First(&inv, out.ID).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(inv.PasswordHash), []byte("s3cret!!")))

	_, err = s.Create(context.Background(), CreateInput{Name: "Other", Email: "ann@example.com", Password: "s3cret!!"})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUpdate(t *testing.T) {
	s, _ := setupInvestorsTest(t)
	a, err := s.Create(context.Background(), CreateInput{Name: "Ann", Email: "ann@example.com", Password: "s3cret!!"})
	require.NoError(t, err)
	b, err := s.Create(context.Background(), CreateInput{Name: "Bob", Email: "bob@example.com", Password: "s3cret!!"})
	require.NoError(t, err)

	got, err := s.Update(context.Background(), a.ID, UpdateInput{Name: strPtr("Ann Smith")})
	require.NoError(t, err)
	assert.Equal(t, "Ann Smith", got.Name)
	assert.Equal(t, "ann@example.com", got.Email)

	_, err = s.Update(context.Background(), a.ID, UpdateInput{})
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	_, err = s.Update(context.Background(), a.ID, UpdateInput{Email: strPtr(b.Email)})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = s.Update(context.Background(), 999, UpdateInput{Name: strPtr("Ghost")})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestSetStatus(t *testing.T) {
	s, _ := setupInvestorsTest(t)
	a, err := s.Create(context.Background(), CreateInput{Name: "Ann", Email: "ann@example.com", Password: "s3cret!!"})
	require.NoError(t, err)

	got, err := s.SetStatus(context.Background(), a.ID, "suspended")
	require.NoError(t, err)
	assert.Equal(t, domain.InvestorSuspended, got.Status)

	_, err = s.SetStatus(context.Background(), a.ID, "frozen")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = s.SetStatus(context.Background(), 999, "active")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestDelete_RefusesWithLedgerHistory(t *testing.T) {
	s, db := setupInvestorsTest(t)
	a, err := s.Create(context.Background(), CreateInput{Name: "Ann", Email: "ann@example.com", Password: "s3cret!!"})
	require.NoError(t, err)
	b, err := s.Create(context.Background(), CreateInput{Name: "Bob", Email: "bob@example.com", Password: "s3cret!!"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Transaction{
		InvestorID: a.ID, Amount: decimal.NewFromInt(10), Date: time.Now(),
		Type: domain.TypeContribution, Status: domain.StatusPending,
	}).Error)

	err = s.Delete(context.Background(), a.ID)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	require.NoError(t, s.Delete(context.Background(), b.ID))
	_, err = s.Get(context.Background(), b.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPercentageShare(t *testing.T) {
	assert.True(t, PercentageShare(decimal.NewFromInt(5), decimal.Zero).IsZero())
	assert.Equal(t, "33.33", PercentageShare(decimal.NewFromInt(1), decimal.NewFromInt(3)).StringFixed(2))
	assert.Equal(t, "100.00", PercentageShare(decimal.NewFromInt(3), decimal.NewFromInt(3)).StringFixed(2))
}

func TestDashboard(t *testing.T) {
	s, db := setupInvestorsTest(t)
	a, err := s.Create(context.Background(), CreateInput{Name: "Ann", Email: "ann@example.com", Password: "s3cret!!"})
	require.NoError(t, err)
	b, err := s.Create(context.Background(), CreateInput{Name: "Bob", Email: "bob@example.com", Password: "s3cret!!"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Investor{}).Where("id = ?", a.ID).Update("total_bonds", "250").Error)
	require.NoError(t, db.Model(&domain.Investor{}).Where("id = ?", b.ID).Update("total_bonds", "750").Error)
	require.NoError(t, db.Create(&domain.Transaction{
		InvestorID: a.ID, Amount: decimal.NewFromInt(250), Date: time.Now(),
		Type: domain.TypeContribution, Status: domain.StatusApproved,
	}).Error)

	dash, err := s.Dashboard(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", dash.PercentageShare.StringFixed(2))
	assert.Len(t, dash.Transactions, 1)

	_, err = s.Dashboard(context.Background(), 999)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
