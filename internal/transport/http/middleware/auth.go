package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the locals key the auth middleware stores the caller id under.
const UserIDKey = "userID"

// devTokenPrefix is the bearer token form accepted in development,
// "dev-<user id>".
const devTokenPrefix = "dev-"

// Auth resolves the calling user from the Authorization header or, for test
// clients, from X-User-Id, and stores the id in request locals. Requests
// without a resolvable user are rejected.
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Get("X-User-Id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return unauthorized(c)
			}
			c.Locals(UserIDKey, id)
			return c.Next()
		}

		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !strings.HasPrefix(token, devTokenPrefix) {
			return unauthorized(c)
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(token, devTokenPrefix), 10, 64)
		if err != nil || id <= 0 {
			return unauthorized(c)
		}
		c.Locals(UserIDKey, id)
		return c.Next()
	}
}

// UserID reads the caller id stored by Auth. Zero means no authenticated user.
func UserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(UserIDKey).(int64)
	return id
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"detail": "Authentication credentials were not provided.",
	})
}
