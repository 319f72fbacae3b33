package middleware

import (
	"strings"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/gofiber/fiber/v2"
)

const (
	userKey   = "user"
	claimsKey = "claims"
	cookieJWT = "JWT"
)

// TokenParser validates a raw JWT. *token.Service satisfies it.
type TokenParser interface {
	Parse(tokenString string) (token.Claims, error)
}

// AuthMiddleware rejects requests without a valid identity.
func AuthMiddleware(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !resolve(c, parser) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}
		return c.Next()
	}
}

// OptionalAuth resolves the identity when one is present and lets the
// request through either way.
func OptionalAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resolve(c, parser)
		return c.Next()
	}
}

func resolve(c *fiber.Ctx, parser TokenParser) bool {
	tokenStr := bearerToken(c.Get(fiber.HeaderAuthorization))
	if tokenStr == "" {
		tokenStr = c.Cookies(cookieJWT)
	}
	if tokenStr == "" {
		return false
	}

	claims, err := parser.Parse(tokenStr)
	if err != nil || claims.User == nil || claims.User.ID == "" {
		return false
	}

	c.Locals(userKey, *claims.User)
	c.Locals(claimsKey, claims)
	return true
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// CurrentUserID returns the caller's opaque identifier, or "" if the
// request carries no resolved identity.
func CurrentUserID(c *fiber.Ctx) string {
	user, ok := c.Locals(userKey).(token.User)
	if !ok {
		return ""
	}
	return user.ID
}

// CurrentUser returns the resolved token user, if any.
func CurrentUser(c *fiber.Ctx) (token.User, bool) {
	user, ok := c.Locals(userKey).(token.User)
	return user, ok
}
