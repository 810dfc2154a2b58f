package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// authMiddleware resolves the bearer token to a session and attaches the
// owning user to the request context. Missing, unknown, and expired
// tokens are all rejected with 401.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "bearer token required"})
		}

		session, err := s.store.GetSession(c.Request().Context(), token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
		if session.IsExpired() {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token expired"})
		}

		c.Set("user_id", session.UserID)
		c.Set("session_token", session.Token)
		return next(c)
	}
}
