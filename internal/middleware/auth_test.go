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

const testSecret = "test-secret"

func workerApp() *fiber.App {
	app := fiber.New()
	app.Get("/p",
		middleware.JWTBearer(testSecret),
		middleware.AttachJWTLocals(),
		middleware.RequireRoles("worker"),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"uid": c.Locals("userId")})
		},
	)
	return app
}

func TestJWTBearer_MissingHeader(t *testing.T) {
	app := workerApp()
	res, err := app.Test(httptest.NewRequest("GET", "/p", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestJWTBearer_MalformedToken(t *testing.T) {
	app := workerApp()
	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestJWTBearer_WrongScheme(t *testing.T) {
	token, err := utils.SignJWT(testSecret, 7, "worker", 60)
	require.NoError(t, err)

	app := workerApp()
	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Authorization", "Basic "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestRequireRoles_CustomerOnWorkerRoute(t *testing.T) {
	token, err := utils.SignJWT(testSecret, 7, "customer", 60)
	require.NoError(t, err)

	app := workerApp()
	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
}

func TestRequireRoles_WorkerAllowed(t *testing.T) {
	token, err := utils.SignJWT(testSecret, 7, "worker", 60)
	require.NoError(t, err)

	app := workerApp()
	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
