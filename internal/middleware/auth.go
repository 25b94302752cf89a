package middleware

import (
	"context"
	"strings"

	"inkwell/internal/identity"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals keys populated by AuthRequired.
const (
	LocalsUser      = "authUser"
	LocalsUserID    = "userID"
	LocalsUserEmail = "userEmail"
)

// TokenVerifier resolves a bearer token to a provider identity.
type TokenVerifier interface {
	UserFromToken(ctx context.Context, accessToken string) (*identity.User, error)
}

// AuthRequired enforces bearer authentication against the identity provider.
// On success the resolved identity is attached to the request; on any
// failure the request is rejected with 401 and the downstream handler never
// runs. A panic while verifying is also converted to 401, never a 500.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				Logger.ErrorContext(c.UserContext(), "panic during authentication", "panic", r)
				AuthFailures.WithLabelValues("panic").Inc()
				err = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authentication failed",
				})
			}
		}()

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			AuthFailures.WithLabelValues("missing_header").Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No authorization header",
			})
		}

		// The token is the second whitespace-delimited segment; the scheme
		// prefix ("Bearer" or otherwise) is not inspected.
		parts := strings.Fields(authHeader)
		if len(parts) < 2 {
			AuthFailures.WithLabelValues("missing_token").Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No token provided",
			})
		}
		token := parts[1]

		user, verifyErr := verifier.UserFromToken(c.Context(), token)
		if verifyErr != nil || user == nil {
			AuthFailures.WithLabelValues("invalid_token").Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(LocalsUser, user)
		c.Locals(LocalsUserID, user.ID)
		c.Locals(LocalsUserEmail, user.Email)

		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}
