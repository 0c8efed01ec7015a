package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "user_id"

// JWTMiddleware validates bearer tokens and stores user_id in locals. Browsers
// cannot set headers on a websocket upgrade, so the access_token query
// parameter is accepted as a fallback.
func JWTMiddleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Query("access_token")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := svc.ValidateAccessToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the user established by JWTMiddleware.
func UserID(c *fiber.Ctx) (string, error) {
	id, _ := c.Locals(userIDKey).(string)
	if id == "" {
		return "", ErrNoUser
	}
	return id, nil
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
