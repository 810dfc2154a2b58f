package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dailyflow/dailyreset/internal/model"
)

// Completion colors for list progress and calendar cells
var (
	NoCompletion = lipgloss.Color("#7F1D1D") // dark red - 0%
	Low          = lipgloss.Color("#EF4444") // red - under 30%
	Mid          = lipgloss.Color("#EAB308") // yellow - under 70%
	High         = lipgloss.Color("#22C55E") // green - 70% and up

	TextMuted = lipgloss.Color("#888888")
	Primary   = lipgloss.Color("#4ECDC4")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	DoneTaskStyle = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(TextMuted)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	TodayStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

// completionColor maps a history color class to its terminal color
func completionColor(color string) lipgloss.Color {
	switch color {
	case model.ColorNoCompletion:
		return NoCompletion
	case model.ColorLow:
		return Low
	case model.ColorMid:
		return Mid
	case model.ColorHigh:
		return High
	default:
		return TextMuted
	}
}

// percentStyle renders a completion percentage in its class color
func percentStyle(percentage int) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(completionColor(model.ClassifyColor(percentage)))
}

// dayCellStyle renders a calendar day on its completion color
func dayCellStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(completionColor(color))
}
