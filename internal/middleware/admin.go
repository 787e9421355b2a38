package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/easyghar/easyghar-backend/internal/utils"
)

// RequireAdmin guards the admin API. The bearer value is accepted either as
// a session token carrying the admin role, or as the statically configured
// admin key (compared in constant time). An empty adminKey means the admin
// API is not enabled for this deployment.
func RequireAdmin(jwtSecret, adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminKey == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Admin API not configured.")
		}

		token := BearerToken(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized.")
		}

		if claims, err := utils.ParseJWT(jwtSecret, token); err == nil && claims.Role == "admin" {
			return c.Next()
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(adminKey)) == 1 {
			return c.Next()
		}

		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized.")
	}
}
