package announcements

import (
	"context"
	"testing"
	"time"

	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAnnouncementsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func TestCreateAndLatest(t *testing.T) {
	s, db := setupAnnouncementsTest(t)

	_, err := s.Create(context.Background(), " ", "body")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	empty, err := s.Latest(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	old, err := s.Create(context.Background(), "Q1 results", "Dividends paid.")
	require.NoError(t, err)
	require.NoError(t, db.Model(old).Update("created_at", time.Now().Add(-48*time.Hour)).Error)
	_, err = s.Create(context.Background(), "Q2 results", "Interest distributed.")
	require.NoError(t, err)

	list, err := s.Latest(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Q2 results", list[0].Title)

	one, err := s.Latest(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
