package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "bondbook-backend/internal/application/auth"
	"bondbook-backend/internal/application/investors"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/database"
	"bondbook-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	app *fiber.App
	db  *gorm.DB
	rdb *redis.Client
}

func setupAuthHandlers(t *testing.T) env {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	h := &Handlers{
		Service:   &authsvc.Service{DB: db},
		Investors: &investors.Service{DB: db},
		Rdb:       rdb,
	}
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/admin/login", h.AdminLogin)
	app.Post("/investor/login", h.InvestorLogin)
	app.Post("/investor/register", h.InvestorRegister)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return env{app: app, db: db, rdb: rdb}
}

func (e env) call(t *testing.T, method, path string, body interface{}, cookie string) (*http.Response, map[string]interface{}) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

func TestAdminLoginMeLogout(t *testing.T) {
	e := setupAuthHandlers(t)
	hash, err := authsvc.HashPassword("Admin#123")
	require.NoError(t, err)
	require.NoError(t, e.db.Create(&domain.Admin{Username: "root", Email: "root@example.com", PasswordHash: hash}).Error)

	resp, _ := e.call(t, "POST", "/admin/login", map[string]string{"email": "root@example.com", "password": "nope"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, out := e.call(t, "POST", "/admin/login", map[string]string{"email": "ROOT@example.com", "password": "Admin#123"}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "admin", user["role"])
	assert.Nil(t, user["investor_id"])

	cookie := sessionCookie(resp)
	require.NotEmpty(t, cookie)
	sid := cookie[2:]
	members, err := e.rdb.SMembers(context.Background(), userSessionsPrefix+user["user_id"].(string)).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{sid}, members)

	resp, out = e.call(t, "GET", "/me", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "root", out["data"].(map[string]interface{})["user"].(map[string]interface{})["name"])

	resp, _ = e.call(t, "DELETE", "/logout", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), e.rdb.Exists(context.Background(), middleware.SessionRedisPrefix+sid).Val())

	resp, _ = e.call(t, "GET", "/me", nil, cookie)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestInvestorRegisterAndLogin(t *testing.T) {
	e := setupAuthHandlers(t)

	resp, _ := e.call(t, "POST", "/investor/register", map[string]string{"name": "Ana Lima", "email": "bad", "password": "secret123"}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, out := e.call(t, "POST", "/investor/register", map[string]string{"name": "Ana Lima", "email": "ana@example.com", "password": "secret123"}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "investor", user["role"])
	require.NotNil(t, user["investor_id"])

	resp, out = e.call(t, "GET", "/me", nil, sessionCookie(resp))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	me := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, user["investor_id"], me["investor_id"])

	resp, _ = e.call(t, "POST", "/investor/register", map[string]string{"name": "Ana Lima", "email": "ana@example.com", "password": "secret123"}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = e.call(t, "POST", "/investor/login", map[string]string{"email": "ana@example.com", "password": "secret123"}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestInvestorLogin_Inactive(t *testing.T) {
	e := setupAuthHandlers(t)
	hash, err := authsvc.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, e.db.Create(&domain.Investor{
		Name: "Bo", Email: "bo@example.com", PasswordHash: hash, Status: domain.InvestorSuspended,
	}).Error)

	resp, _ := e.call(t, "POST", "/investor/login", map[string]string{"email": "bo@example.com", "password": "secret123"}, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = e.call(t, "POST", "/investor/login", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
