package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dailyflow/dailyreset/internal/logger"
	"github.com/dailyflow/dailyreset/internal/model"
)

// userDay computes "today" for the authenticated user in their timezone
func (s *Server) userDay(c echo.Context, userID string) (model.Day, error) {
	loc, err := s.store.UserLocation(c.Request().Context(), userID)
	if err != nil {
		return "", err
	}
	return model.DayOf(time.Now(), loc), nil
}

// handleListTasks returns today's tasks in display order
func (s *Server) handleListTasks(c echo.Context) error {
	userID := c.Get("user_id").(string)

	day, err := s.userDay(c, userID)
	if err != nil {
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	tasks, err := s.store.TasksForDay(c.Request().Context(), userID, day)
	if err != nil {
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	if tasks == nil {
		tasks = []model.Task{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"day":   day,
		"tasks": tasks,
	})
}

type addTaskRequest struct {
	Text string `json:"text"`
}

// handleAddTask appends a task to today's list
func (s *Server) handleAddTask(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req addTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text required"})
	}

	day, err := s.userDay(c, userID)
	if err != nil {
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	task, err := s.store.CreateTask(c.Request().Context(), userID, day, text)
	if err != nil {
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusCreated, task)
}

type updateTaskRequest struct {
	Text *string `json:"text,omitempty"`
	Done *bool   `json:"done,omitempty"`
}

// handleUpdateTask toggles completion or edits the text of one task
func (s *Server) handleUpdateTask(c echo.Context) error {
	userID := c.Get("user_id").(string)
	taskID := c.Param("id")

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.Text == nil && req.Done == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "nothing to update"})
	}

	ctx := c.Request().Context()

	if req.Done != nil {
		if err := s.store.SetTaskDone(ctx, taskID, userID, *req.Done); err != nil {
			return s.taskUpdateError(c, err)
		}
	}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "text required"})
		}
		if err := s.store.SetTaskText(ctx, taskID, userID, text); err != nil {
			return s.taskUpdateError(c, err)
		}
	}

	task, err := s.store.GetTask(ctx, taskID, userID)
	if err != nil {
		return s.taskUpdateError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

// handleDeleteTask removes one task
func (s *Server) handleDeleteTask(c echo.Context) error {
	userID := c.Get("user_id").(string)
	taskID := c.Param("id")

	if err := s.store.DeleteTask(c.Request().Context(), taskID, userID); err != nil {
		return s.taskUpdateError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

type reorderRequest struct {
	Orders []TaskOrder `json:"orders"`
}

// handleReorderTasks applies a drag-reorder as one batched write, so a
// failed reorder leaves the previous ordering fully intact.
func (s *Server) handleReorderTasks(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if len(req.Orders) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "orders required"})
	}

	if err := s.store.ReorderTasks(c.Request().Context(), userID, req.Orders); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
		}
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "reordered"})
}

func (s *Server) taskUpdateError(c echo.Context, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	logger.Error("db error", logger.F("error", err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
