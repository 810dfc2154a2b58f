package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a task to today's list",
	Long: `Add a task to today's list.

Examples:
  dailyreset add "Buy groceries"
  dailyreset add Water the plants`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	ensureFresh(c)

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("task text required")
	}

	task, err := c.AddTask(text)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Printf("Added: %s\n", task.Text)
	return nil
}
