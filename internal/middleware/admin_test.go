package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyghar/easyghar-backend/internal/middleware"
	"github.com/easyghar/easyghar-backend/internal/utils"
)

func adminApp(adminKey string) *fiber.App {
	app := fiber.New()
	app.Get("/a",
		middleware.RequireAdmin(testSecret, adminKey),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true})
		},
	)
	return app
}

func TestRequireAdmin_NotConfigured(t *testing.T) {
	app := adminApp("")
	req := httptest.NewRequest("GET", "/a", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, res.StatusCode)
}

func TestRequireAdmin_MissingToken(t *testing.T) {
	app := adminApp("admin-key")
	res, err := app.Test(httptest.NewRequest("GET", "/a", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestRequireAdmin_NearMissKey(t *testing.T) {
	app := adminApp("admin-key")
	req := httptest.NewRequest("GET", "/a", nil)
	req.Header.Set("Authorization", "Bearer admin-keY")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestRequireAdmin_StaticKey(t *testing.T) {
	app := adminApp("admin-key")
	req := httptest.NewRequest("GET", "/a", nil)
	req.Header.Set("Authorization", "Bearer admin-key")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestRequireAdmin_AdminRoleToken(t *testing.T) {
	token, err := utils.SignJWT(testSecret, 1, "admin", 60)
	require.NoError(t, err)

	app := adminApp("admin-key")
	req := httptest.NewRequest("GET", "/a", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestRequireAdmin_WorkerRoleTokenRejected(t *testing.T) {
	token, err := utils.SignJWT(testSecret, 1, "worker", 60)
	require.NoError(t, err)

	app := adminApp("admin-key")
	req := httptest.NewRequest("GET", "/a", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}
