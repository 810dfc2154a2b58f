package model

import "math"

// Completion colors for the calendar view
const (
	ColorNoCompletion = "no-completion" // 0%
	ColorLow          = "low"           // 1-29%
	ColorMid          = "mid"           // 30-69%
	ColorHigh         = "high"          // 70-100%
)

// DayHistory is an immutable-after-creation summary of one user's task
// completion for one past day. Days with no tasks are never archived.
type DayHistory struct {
	UserID     string `json:"user_id"`
	Day        Day    `json:"day"`
	Total      int    `json:"total_tasks"`
	Completed  int    `json:"completed_tasks"`
	Percentage int    `json:"completion_percentage"`
	Color      string `json:"color"`
}

// Percentage returns round(100 * completed / total), or 0 when total is 0.
func Percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// ClassifyColor maps a completion percentage to its calendar color
func ClassifyColor(percentage int) string {
	switch {
	case percentage == 0:
		return ColorNoCompletion
	case percentage < 30:
		return ColorLow
	case percentage < 70:
		return ColorMid
	default:
		return ColorHigh
	}
}

// Summarize aggregates one day's tasks into a history record.
// ok is false when there are no tasks, meaning nothing to archive.
func Summarize(userID string, day Day, tasks []Task) (h DayHistory, ok bool) {
	if len(tasks) == 0 {
		return DayHistory{}, false
	}

	completed := 0
	for _, t := range tasks {
		if t.Done {
			completed++
		}
	}

	pct := Percentage(completed, len(tasks))
	return DayHistory{
		UserID:     userID,
		Day:        day,
		Total:      len(tasks),
		Completed:  completed,
		Percentage: pct,
		Color:      ClassifyColor(pct),
	}, true
}
