package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dailyflow/dailyreset/internal/client"
	"github.com/dailyflow/dailyreset/internal/model"
)

var moveCmd = &cobra.Command{
	Use:   "move [from] [to]",
	Short: "Move a task to a new position",
	Long: `Move a task from one position to another in today's list.
The whole reordering is applied in a single server call.

Examples:
  dailyreset move 3 1`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func runMove(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	ensureFresh(c)

	from, err := strconv.Atoi(args[0])
	if err != nil || from < 1 {
		return fmt.Errorf("invalid position: %s", args[0])
	}
	to, err := strconv.Atoi(args[1])
	if err != nil || to < 1 {
		return fmt.Errorf("invalid position: %s", args[1])
	}

	list, err := c.TodayTasks()
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	n := len(list.Tasks)
	if from > n || to > n {
		return fmt.Errorf("positions out of range (today has %d tasks)", n)
	}
	if from == to {
		return nil
	}

	reordered := moveTask(list.Tasks, from-1, to-1)

	// Renumber densely from 1 and send the whole ordering at once.
	orders := make([]client.TaskOrder, len(reordered))
	for i, t := range reordered {
		orders[i] = client.TaskOrder{ID: t.ID, Position: i + 1}
	}

	if err := c.Reorder(orders); err != nil {
		return fmt.Errorf("failed to reorder: %w", err)
	}

	fmt.Printf("Moved \"%s\" to position %d.\n", list.Tasks[from-1].Text, to)
	return nil
}

// moveTask returns tasks with the element at from moved to index to
func moveTask(tasks []model.Task, from, to int) []model.Task {
	moved := tasks[from]

	rest := make([]model.Task, 0, len(tasks)-1)
	rest = append(rest, tasks[:from]...)
	rest = append(rest, tasks[from+1:]...)

	out := make([]model.Task, 0, len(tasks))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return out
}
