package bonds

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"bondbook-backend/internal/application/aggregates"
	bondsvc "bondbook-backend/internal/application/bonds"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupBondHandlers(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	store := database.NewLedgerStore(db)
	h := &Handlers{Service: &bondsvc.Service{DB: db, Store: store, Aggregates: aggregates.NewService(store, 1)}}
	app := fiber.New()
	app.Post("/bonds", h.Create)
	app.Get("/bonds", h.List)
	app.Post("/bonds/:id/interest", h.AddInterest)
	return app, db
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return resp.StatusCode, out
}

func TestBondLifecycle(t *testing.T) {
	app, db := setupBondHandlers(t)
	inv := domain.Investor{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, db.Create(&inv).Error)

	code, out := post(t, app, "/bonds", fmt.Sprintf(
		`{"investor_id":%d,"bond_amount":"1000","interest_rate":"5","maturity_months":12,"start_date":"2024-01-15"}`, inv.ID))
	require.Equal(t, fiber.StatusCreated, code)
	bondID := uint(out["data"].(map[string]interface{})["id"].(float64))

	resp, err := app.Test(httptest.NewRequest("GET", "/bonds", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	var list map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &list))
	rows := list["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0].(map[string]interface{})["investor_name"])

	path := fmt.Sprintf("/bonds/%d/interest", bondID)
	code, out = post(t, app, path, `{"amount":"50","date":"2025-01-15"}`)
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, "interest", out["data"].(map[string]interface{})["type"])

	var got domain.Investor
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, "1050.00", got.TotalBonds.StringFixed(2))

	code, _ = post(t, app, path, `{"amount":"50"}`)
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestCreateBond_Validation(t *testing.T) {
	app, db := setupBondHandlers(t)
	inv := domain.Investor{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, db.Create(&inv).Error)

	code, _ := post(t, app, "/bonds", `{"bond_amount":"10","maturity_months":12,"start_date":"2024-01-01"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = post(t, app, "/bonds", fmt.Sprintf(`{"investor_id":%d,"bond_amount":"10","maturity_months":12,"start_date":"15/01/2024"}`, inv.ID))
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = post(t, app, "/bonds", `{"investor_id":999,"bond_amount":"10","maturity_months":12,"start_date":"2024-01-01"}`)
	assert.Equal(t, fiber.StatusNotFound, code)
	code, _ = post(t, app, "/bonds/999/interest", `{"amount":"5"}`)
	assert.Equal(t, fiber.StatusNotFound, code)
}
