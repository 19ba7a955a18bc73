package middleware

import (
	"log"
	"strings"
	"time"

	"consult-service/internal/config"

	"github.com/MicahParks/keyfunc"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Fiber locals key for the authenticated Clerk subject.
const ClerkUserIDKey = "clerkUserID"

// NewClerkJWKS fetches and auto-refreshes the Clerk instance JWKS used to
// verify session tokens.
func NewClerkJWKS(cfg *config.Config) (*keyfunc.JWKS, error) {
	return keyfunc.Get(cfg.ClerkJWKSURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Printf("⚠️ [CLERK] JWKS refresh failed: %v", err)
		},
	})
}

// ClerkAuth verifies the bearer token against the Clerk JWKS and stores the
// subject in locals. Handlers behind it can assume a resolved identity.
func ClerkAuth(jwks *keyfunc.JWKS, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success":    false,
				"error":      "Unauthorized",
				"statusCode": fiber.StatusUnauthorized,
			})
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, jwks.Keyfunc)
		if err != nil || !token.Valid {
			log.Printf("[CLERK-AUTH] ❌ REJECTED | IP=%s | Path=%s | err=%v", c.IP(), c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success":    false,
				"error":      "Unauthorized",
				"statusCode": fiber.StatusUnauthorized,
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success":    false,
				"error":      "Unauthorized",
				"statusCode": fiber.StatusUnauthorized,
			})
		}
		if cfg.ClerkIssuer != "" && !claims.VerifyIssuer(cfg.ClerkIssuer, true) {
			log.Printf("[CLERK-AUTH] ❌ REJECTED (bad issuer) | IP=%s | Path=%s", c.IP(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success":    false,
				"error":      "Unauthorized",
				"statusCode": fiber.StatusUnauthorized,
			})
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success":    false,
				"error":      "Unauthorized",
				"statusCode": fiber.StatusUnauthorized,
			})
		}

		c.Locals(ClerkUserIDKey, sub)
		return c.Next()
	}
}

// ServiceAuth guards internal endpoints with the shared service token. Used by
// the payment verification route, which trusted backends call directly.
func ServiceAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Service-Token")
		if token == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if token != cfg.ServiceExpectedToken {
			log.Printf("[SERVICE-AUTH] ❌ REJECTED | IP=%s | Path=%s", c.IP(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success":    false,
				"error":      "Unauthorized: invalid or missing service token",
				"statusCode": fiber.StatusUnauthorized,
			})
		}
		return c.Next()
	}
}

// ClerkUserID retrieves the authenticated subject set by ClerkAuth.
func ClerkUserID(c *fiber.Ctx) (string, bool) {
	value := c.Locals(ClerkUserIDKey)
	userID, ok := value.(string)
	return userID, ok && userID != ""
}
