package database

import (
	"context"
	"testing"
	"time"

	"bondbook-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openStoreTest(t *testing.T) (*LedgerStore, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrate(db))
	return NewLedgerStore(db), db
}

func TestSetTransactionStatus_OnlyFromPending(t *testing.T) {
	store, db := openStoreTest(t)
	inv := domain.Investor{Name: "ivy", Email: "ivy@example.com"}
	require.NoError(t, db.Create(&inv).Error)
	tx := domain.Transaction{
		InvestorID: inv.ID,
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Type:       domain.TypeContribution,
		Status:     domain.StatusPending,
	}
	require.NoError(t, db.Create(&tx).Error)
	ctx := context.Background()

	require.NoError(t, store.SetTransactionStatus(ctx, tx.ID, domain.StatusRejected))

	err := store.SetTransactionStatus(ctx, tx.ID, domain.StatusApproved)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	assert.Contains(t, err.Error(), "already rejected")

	got, err := store.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)

	err = store.SetTransactionStatus(ctx, 9999, domain.StatusApproved)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
