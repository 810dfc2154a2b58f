package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dailyflow/dailyreset/internal/rollover"
)

// handleRollover runs the rollover check for the calling user. Clients
// call this on activation and whenever their local checkpoint looks
// stale; repeating it on the same day is a cheap no-op.
func (s *Server) handleRollover(c echo.Context) error {
	userID := c.Get("user_id").(string)

	outcome, err := s.engine.EnsureFresh(c.Request().Context(), userID, time.Now())
	if err != nil {
		// Failure is not fatal: the next periodic check retries the
		// whole body because the phase marker was not advanced.
		return c.JSON(http.StatusBadGateway, outcome)
	}

	return c.JSON(http.StatusOK, outcome)
}

// rolloverOnActivation runs a rollover check in the background when a
// session becomes active (login, register, magic-link verify). Errors are
// already logged by the engine; the hourly sweep retries.
func (s *Server) rolloverOnActivation(userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.engine.EnsureFresh(ctx, userID, time.Now())
	}()
}

var _ rollover.Store = (*Store)(nil)
var _ rollover.SessionSource = (*Store)(nil)
