package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dailyflow/dailyreset/internal/client"
	"github.com/dailyflow/dailyreset/internal/model"
)

var doneCmd = &cobra.Command{
	Use:   "done [number]",
	Short: "Toggle a task's completion",
	Long: `Toggle a task's completion by its number in 'dailyreset list'.

Examples:
  dailyreset done 2`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	ensureFresh(c)

	task, err := taskByNumber(c, args[0])
	if err != nil {
		return err
	}

	updated, err := c.SetDone(task.ID, !task.Done)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if updated.Done {
		fmt.Printf("Done: %s\n", updated.Text)
	} else {
		fmt.Printf("Reopened: %s\n", updated.Text)
	}
	return nil
}

// taskByNumber resolves a 1-based list position to today's task
func taskByNumber(c *client.Client, arg string) (model.Task, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return model.Task{}, fmt.Errorf("invalid task number: %s", arg)
	}

	list, err := c.TodayTasks()
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	if n > len(list.Tasks) {
		return model.Task{}, fmt.Errorf("no task %d (today has %d tasks)", n, len(list.Tasks))
	}

	return list.Tasks[n-1], nil
}
