package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"beecok/internal/model"
)

// UserLocalKey holds the authenticated *model.User in Fiber's locals.
const UserLocalKey = "user"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Auth rejects requests without a valid bearer token with 401 and a
// WWW-Authenticate challenge. The error is rendered by the app's error handler.
func Auth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}
		user, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return fiber.NewError(fiber.StatusUnauthorized, "Could not validate credentials")
		}
		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(*model.User)
	return u, ok && u != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
