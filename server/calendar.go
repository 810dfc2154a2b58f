package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dailyflow/dailyreset/internal/logger"
	"github.com/dailyflow/dailyreset/internal/model"
)

type historyResponse struct {
	Days []model.DayHistory `json:"days"`

	// Aggregates over the requested range, for the calendar footer
	DaysWithTasks     int `json:"days_with_tasks"`
	TotalTasks        int `json:"total_tasks"`
	CompletedTasks    int `json:"completed_tasks"`
	OverallPercentage int `json:"overall_percentage"`
}

// handleHistory returns archived completion summaries for an inclusive
// date range, e.g. ?from=2026-03-01&to=2026-03-31 for a calendar month.
func (s *Server) handleHistory(c echo.Context) error {
	userID := c.Get("user_id").(string)

	from, err := model.ParseDay(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid from date"})
	}
	to, err := model.ParseDay(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid to date"})
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "to before from"})
	}

	days, err := s.store.HistoryRange(c.Request().Context(), userID, from, to)
	if err != nil {
		logger.Error("db error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	resp := historyResponse{Days: days}
	if resp.Days == nil {
		resp.Days = []model.DayHistory{}
	}
	for _, d := range days {
		resp.DaysWithTasks++
		resp.TotalTasks += d.Total
		resp.CompletedTasks += d.Completed
	}
	resp.OverallPercentage = model.Percentage(resp.CompletedTasks, resp.TotalTasks)

	return c.JSON(http.StatusOK, resp)
}
