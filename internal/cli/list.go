package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dailyflow/dailyreset/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List today's tasks",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	ensureFresh(c)

	list, err := c.TodayTasks()
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	fmt.Println(HeaderStyle.Render("Daily Reset - " + list.Day.String()))
	fmt.Println()

	if len(list.Tasks) == 0 {
		fmt.Println("No tasks yet today. Add one with: dailyreset add \"Your task\"")
		return nil
	}

	completed := 0
	for i, t := range list.Tasks {
		mark := "[ ]"
		text := t.Text
		if t.Done {
			mark = "[x]"
			text = DoneTaskStyle.Render(text)
			completed++
		}
		fmt.Printf("%2d. %s %s\n", i+1, mark, text)
	}

	pct := model.Percentage(completed, len(list.Tasks))
	fmt.Println()
	fmt.Printf("%d of %d done  %s  %s\n",
		completed, len(list.Tasks),
		progressBar(pct, 20),
		percentStyle(pct).Render(fmt.Sprintf("%d%%", pct)))

	return nil
}

// progressBar renders pct as a fixed-width bar of filled blocks
func progressBar(pct, width int) string {
	filled := pct * width / 100
	return MutedStyle.Render("[") +
		strings.Repeat("█", filled) +
		strings.Repeat("░", width-filled) +
		MutedStyle.Render("]")
}
