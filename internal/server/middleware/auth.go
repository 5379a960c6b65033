package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware checks the Authorization header against the configured
// credentials. With no auth configured every request passes. A shared
// API key, when set, is accepted before JWT validation.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := c.(*AppContext).State
		if !state.AuthEnabled() {
			return next(c)
		}

		authHeader := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if state.APIKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(state.APIKey)) == 1 {
			return next(c)
		}

		if state.Key != nil {
			k := *state.Key
			parsed, err := jwt.Parse(token, k.Keyfunc)
			if err == nil && parsed.Valid {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
}
