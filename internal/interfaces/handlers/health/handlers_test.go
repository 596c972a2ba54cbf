package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	healthsvc "bondbook-backend/internal/application/health"
	"bondbook-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHealthHandlers(t *testing.T, dbErr error) (*fiber.App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		Rdb:            rdb,
		DB:             healthsvc.PingFunc(func(context.Context) error { return dbErr }),
		HealthAdminKey: "secret",
	}
	app := fiber.New()
	app.Get("/health", h.JSON)
	app.Get("/health/errors", h.Errors)
	app.Post("/health/reset", h.Reset)
	return app, rdb
}

func TestHealthJSON(t *testing.T) {
	app, rdb := setupHealthHandlers(t, nil)
	require.NoError(t, rdb.Set(context.Background(), middleware.KeyReqTotal, "4", 0).Err())
	require.NoError(t, rdb.Set(context.Background(), middleware.KeyReqErrors, "1", 0).Err())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	b, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "bondbook-api", out["service"])
	assert.Equal(t, "ok", out["status"])
	traffic := out["traffic"].(map[string]interface{})
	assert.Equal(t, "75.0", traffic["successRate"])
}

func TestHealthJSON_DatabaseDown(t *testing.T) {
	app, _ := setupHealthHandlers(t, errors.New("connection refused"))
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthErrorsAndReset(t *testing.T) {
	app, rdb := setupHealthHandlers(t, nil)
	ctx := context.Background()
	require.NoError(t, rdb.LPush(ctx, middleware.KeyErrorLog, `{"path":"/api/v1/x","status":500}`).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqTotal, "9", 0).Err())

	resp, err := app.Test(httptest.NewRequest("GET", "/health/errors", nil))
	require.NoError(t, err)
	var entries []map[string]interface{}
	b, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(b, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/v1/x", entries[0]["path"])

	resp, err = app.Test(httptest.NewRequest("POST", "/health/reset?key=wrong", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/health/reset?key=secret", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), rdb.Exists(ctx, middleware.KeyReqTotal, middleware.KeyErrorLog).Val())
	assert.Equal(t, int64(1), rdb.Exists(ctx, middleware.KeyStartTime).Val())
}
