package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/dailyflow/dailyreset/internal/logger"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Timezone string `json:"timezone,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	// Validate
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username, email, and password required"})
	}

	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown timezone"})
		}
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("bcrypt error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	ctx := c.Request().Context()

	userID, err := s.store.CreateUser(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "unique") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "username or email already exists"})
		}
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	if req.Timezone != "" {
		if err := s.store.SetUserTimezone(ctx, userID, req.Timezone); err != nil {
			logger.Warn("failed to set timezone at registration", logger.F("error", err))
		}
	}

	// Create session
	token, expiresAt, err := s.createSession(c, userID)
	if err != nil {
		logger.Error("session error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("User registered", logger.F("username", req.Username))
	s.rolloverOnActivation(userID)

	return c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    userID,
	})
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	user, err := s.store.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	token, expiresAt, err := s.createSession(c, user.ID)
	if err != nil {
		logger.Error("session error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("User logged in", logger.F("username", req.Username))
	s.rolloverOnActivation(user.ID)

	return c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    user.ID,
	})
}

// handleLogout revokes the current session
func (s *Server) handleLogout(c echo.Context) error {
	token := c.Get("session_token").(string)
	if err := s.store.DeleteSession(c.Request().Context(), token); err != nil {
		logger.Error("logout error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	userID := c.Get("user_id").(string)

	user, err := s.store.GetUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"timezone": user.Timezone,
	})
}

type timezoneRequest struct {
	Timezone string `json:"timezone"`
}

// handleSetTimezone updates the user's fixed IANA zone. The zone decides
// where the day boundary falls for tasks and rollover.
func (s *Server) handleSetTimezone(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req timezoneRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown timezone"})
	}

	if err := s.store.SetUserTimezone(c.Request().Context(), userID, req.Timezone); err != nil {
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"timezone": req.Timezone})
}

// createSession creates a new session for a user
func (s *Server) createSession(c echo.Context, userID string) (string, time.Time, error) {
	// Generate token
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(tokenBytes)

	// Session expires in 30 days
	expiresAt := time.Now().Add(30 * 24 * time.Hour)

	err := s.store.CreateSession(c.Request().Context(), userID, token, expiresAt)
	return token, expiresAt, err
}
