package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/services"
)

const (
	actorContextKey = "currentActor"
	tokenContextKey = "accessToken"
)

// Authenticator resolves a bearer token into the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Actor, error)
}

// Protected rejects requests without a valid, non-revoked access token and
// stores the caller in the request locals.
func Protected(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return apperrors.Unauthorized("Missing or malformed authorization header")
		}

		actor, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(actorContextKey, *actor)
		c.Locals(tokenContextKey, token)
		return c.Next()
	}
}

// RequireRole must run after Protected.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := CurrentActor(c)
		if !ok {
			return apperrors.Unauthorized("Missing or malformed authorization header")
		}
		if actor.Role != role {
			return apperrors.Forbidden("You do not have permission to access this resource")
		}
		return c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// CurrentActor returns the caller stored by Protected.
func CurrentActor(c *fiber.Ctx) (services.Actor, bool) {
	actor, ok := c.Locals(actorContextKey).(services.Actor)
	return actor, ok
}

// CurrentToken returns the access token accepted by Protected.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenContextKey).(string)
	return token
}
