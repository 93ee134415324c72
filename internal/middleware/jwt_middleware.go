package middleware

import (
	"context"
	"errors"
	"strings"

	"contactbook/internal/models"
	"contactbook/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const currentUserKey = "current_user"

// Authenticator resolves an access token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthRequired is a Fiber middleware that requires a valid bearer access
// token and stores the resolved user in the request locals.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		user, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				return unauthorized(c, "User not found")
			case errors.Is(err, services.ErrInvalidToken):
				log.Debug().Err(err).Msg("access token rejected")
				return unauthorized(c, "Invalid token")
			default:
				log.Error().Err(err).Msg("failed to authenticate request")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Could not authenticate request",
				})
			}
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
	})
}
