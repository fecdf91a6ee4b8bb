package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fahran-backend/internal/domain"
	"fahran-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthApp(t *testing.T) (*fiber.App, *gorm.DB, *redis.Client) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Member{}))

	mr := miniredis.RunT(t)
	cfg := middleware.SessionConfig{
		Secret:   "test-secret",
		RedisURL: "redis://" + mr.Addr(),
	}
	sessionHandler, rdb, err := middleware.Session(cfg)
	require.NoError(t, err)

	h := &Handlers{
		Service: &Service{DB: db},
		Rdb:     rdb,
		Config:  cfg,
	}
	app := fiber.New()
	app.Use(sessionHandler)
	app.Post("/api/v1/auth/register", h.Register)
	app.Post("/api/v1/auth/login", h.Login)
	app.Get("/api/v1/auth/me", h.Me)
	app.Delete("/api/v1/auth/logout", h.Logout)
	return app, db, rdb
}

func seedApprovedMember(t *testing.T, app *fiber.App, db *gorm.DB) {
	body, _ := json.Marshal(map[string]string{
		"name":     "Arif Khan",
		"email":    "arif@example.com",
		"password": "s3cret!pass",
	})
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	require.NoError(t, db.Model(&domain.Member{}).
		Where("email = ?", "arif@example.com").
		Update("member_type", domain.MemberTypeRegular).Error)
}

func loginAndGetCookie(t *testing.T, app *fiber.App) *http.Cookie {
	body, _ := json.Marshal(map[string]string{
		"email":    "arif@example.com",
		"password": "s3cret!pass",
	})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestLoginFlow(t *testing.T) {
	app, db, _ := setupAuthApp(t)
	seedApprovedMember(t, app, db)

	cookie := loginAndGetCookie(t, app)
	require.NotEmpty(t, cookie.Value)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMe_NoSession(t *testing.T) {
	app, _, _ := setupAuthApp(t)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogout_ClearsSession(t *testing.T) {
	app, db, rdb := setupAuthApp(t)
	seedApprovedMember(t, app, db)
	cookie := loginAndGetCookie(t, app)

	req := httptest.NewRequest("DELETE", "/api/v1/auth/logout", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	keys, err := rdb.Keys(context.Background(), middleware.SessionRedisPrefix+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)

	req = httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogin_PendingMemberForbidden(t *testing.T) {
	app, _, _ := setupAuthApp(t)

	body, _ := json.Marshal(map[string]string{
		"name":     "Noor Jahan",
		"email":    "noor@example.com",
		"password": "s3cret!pass",
	})
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	body, _ = json.Marshal(map[string]string{
		"email":    "noor@example.com",
		"password": "s3cret!pass",
	})
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}
