package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dailyflow/dailyreset/internal/model"
)

var calendarCmd = &cobra.Command{
	Use:     "calendar [YYYY-MM]",
	Aliases: []string{"cal"},
	Short:   "Show the completion calendar for a month",
	Long: `Show archived daily completion for a month. Each day is colored by
how much of that day's list was completed.

Examples:
  dailyreset calendar
  dailyreset calendar 2026-02`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCalendar,
}

func runCalendar(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	ensureFresh(c)

	month := time.Now().Format("2006-01")
	if len(args) == 1 {
		if _, err := time.Parse("2006-01", args[0]); err != nil {
			return fmt.Errorf("invalid month %q, want YYYY-MM", args[0])
		}
		month = args[0]
	}

	firstDay, err := model.ParseDay(month + "-01")
	if err != nil {
		return fmt.Errorf("invalid month %q, want YYYY-MM", month)
	}
	first := firstDay.Time(time.Local)
	last := first.AddDate(0, 1, -1)

	history, err := c.HistoryRange(firstDay, model.Day(last.Format("2006-01-02")))
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	byDay := make(map[model.Day]model.DayHistory, len(history.Days))
	for _, d := range history.Days {
		byDay[d.Day] = d
	}

	fmt.Println(HeaderStyle.Render(first.Format("January 2006")))
	fmt.Println("Mo  Tu  We  Th  Fr  Sa  Su")

	today := todayIn(c.Timezone())

	// Monday-start offset for the first week.
	offset := (int(first.Weekday()) + 6) % 7
	for i := 0; i < offset; i++ {
		fmt.Print("    ")
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		day := model.Day(d.Format("2006-01-02"))
		cell := fmt.Sprintf("%2d", d.Day())

		if h, ok := byDay[day]; ok {
			cell = dayCellStyle(h.Color).Render(cell)
		} else if day == today {
			cell = TodayStyle.Render(cell)
		} else {
			cell = MutedStyle.Render(cell)
		}

		fmt.Print(cell + "  ")
		if d.Weekday() == time.Sunday {
			fmt.Println()
		}
	}
	if last.Weekday() != time.Sunday {
		fmt.Println()
	}

	fmt.Println()
	if history.DaysWithTasks == 0 {
		fmt.Println("No archived days this month.")
		return nil
	}

	fmt.Printf("%d days with tasks, %d of %d tasks completed  %s\n",
		history.DaysWithTasks,
		history.CompletedTasks,
		history.TotalTasks,
		percentStyle(history.OverallPercentage).Render(fmt.Sprintf("%d%%", history.OverallPercentage)))

	return nil
}
