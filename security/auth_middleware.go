package security

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"codepair-system/services"
)

// ContextUserIDKey is where the JWT middleware stores the authenticated user
// id on the request context.
const ContextUserIDKey = "user_id"

// JWTAuth rejects requests without a valid Bearer session token and injects
// the token's user id into the echo context.
func JWTAuth(auth *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			userID, err := auth.ParseToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextUserIDKey, userID)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id from the context, or "" when the
// request is unauthenticated.
func UserID(c echo.Context) string {
	userID, _ := c.Get(ContextUserIDKey).(string)
	return userID
}
