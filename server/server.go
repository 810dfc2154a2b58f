package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"

	"github.com/dailyflow/dailyreset/internal/logger"
	"github.com/dailyflow/dailyreset/internal/rollover"
)

// Server is the daily-task API server
type Server struct {
	db      *sql.DB
	store   *Store
	engine  *rollover.Engine
	trigger *rollover.Trigger
	echo    *echo.Echo
}

// New creates a new server
func New(dbURL string) (*Server, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	store := NewStore(db)
	engine := rollover.New(store)

	s := &Server{
		db:      db,
		store:   store,
		engine:  engine,
		trigger: rollover.NewTrigger(engine, store, time.Hour),
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return nil, err
	}

	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/magic-link", s.handleMagicLink)
	api.GET("/magic-link/:token", s.handleMagicLinkVerify)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.PUT("/me/timezone", s.handleSetTimezone)
	protected.POST("/logout", s.handleLogout)

	protected.GET("/tasks", s.handleListTasks)
	protected.POST("/tasks", s.handleAddTask)
	protected.PATCH("/tasks/:id", s.handleUpdateTask)
	protected.DELETE("/tasks/:id", s.handleDeleteTask)
	protected.PUT("/tasks/order", s.handleReorderTasks)

	protected.GET("/history", s.handleHistory)
	protected.POST("/rollover", s.handleRollover)

	s.echo = e
}

// Close stops the trigger and closes the database connection
func (s *Server) Close() error {
	if s.trigger != nil {
		s.trigger.Stop()
	}
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start launches the hourly rollover sweep and serves HTTP
func (s *Server) Start(addr string) error {
	s.trigger.Start()
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
