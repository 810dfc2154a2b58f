package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dailyflow/dailyreset/internal/logger"
)

type magicLinkRequest struct {
	Email string `json:"email"`
}

// handleMagicLink creates a magic link for passwordless login
func (s *Server) handleMagicLink(c echo.Context) error {
	var req magicLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email required"})
	}

	ctx := c.Request().Context()

	// Check if user exists
	if _, err := s.store.GetUserByEmail(ctx, req.Email); err != nil {
		// Don't reveal if email exists
		return c.JSON(http.StatusOK, map[string]string{"message": "if email exists, a magic link will be sent"})
	}

	// Generate token
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		logger.Error("token generation error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	token := hex.EncodeToString(tokenBytes)

	// Token expires in 15 minutes
	expiresAt := time.Now().Add(15 * time.Minute)

	if err := s.store.CreateMagicLink(ctx, req.Email, token, expiresAt); err != nil {
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("Magic link created", logger.F("email", req.Email))

	// In production, send email here
	return c.JSON(http.StatusOK, map[string]string{
		"message": "if email exists, a magic link will be sent",
		"token":   token, // Remove in production
	})
}

// handleMagicLinkVerify verifies a magic link and creates a session
func (s *Server) handleMagicLinkVerify(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "token required"})
	}

	ctx := c.Request().Context()

	link, err := s.store.GetMagicLink(ctx, token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid token"})
	}

	if link.Used {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "token already used"})
	}

	if link.IsExpired() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "token expired"})
	}

	// Mark as used
	if err := s.store.MarkMagicLinkUsed(ctx, token); err != nil {
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	user, err := s.store.GetUserByEmail(ctx, link.Email)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	sessionToken, sessionExpires, err := s.createSession(c, user.ID)
	if err != nil {
		logger.Error("session error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("Magic link login", logger.F("email", link.Email))
	s.rolloverOnActivation(user.ID)

	return c.JSON(http.StatusOK, authResponse{
		Token:     sessionToken,
		ExpiresAt: sessionExpires.Format(time.RFC3339),
		UserID:    user.ID,
	})
}
