package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/streax-app/streax/internal/domain"
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskRemoveCmd)

	taskAddCmd.Flags().StringP("type", "t", "small", "Task type: small, medium or large")
	taskAddCmd.Flags().IntP("xp", "x", 0, "Base XP awarded on completion")
	taskAddCmd.Flags().BoolP("required", "r", false, "Count the task toward the daily streak")
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage a user's tasks",
}

// ─── task add ───────────────────────────────────────────────────────────────

var taskAddCmd = &cobra.Command{
	Use:   "add USER_ID NAME",
	Short: "Register a new task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskAdd,
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	typ, _ := cmd.Flags().GetString("type")
	baseXP, _ := cmd.Flags().GetInt("xp")
	required, _ := cmd.Flags().GetBool("required")

	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	task, err := eng.CreateTask(context.Background(), args[0], args[1], domain.TaskType(typ), baseXP, required)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Added task %s (%s, %d XP)\n", task.Name, task.ID, task.BaseXP)
	return nil
}

// ─── task list ──────────────────────────────────────────────────────────────

var taskListCmd = &cobra.Command{
	Use:   "list USER_ID",
	Short: "List a user's active tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskList,
}

func runTaskList(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	tasks, err := eng.ListTasks(context.Background(), args[0], 0)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stdout, "No tasks registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tXP\tREQUIRED")
	for _, t := range tasks {
		req := ""
		if t.RequiredDaily {
			req = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Name, t.Type, t.BaseXP, req)
	}
	return w.Flush()
}

// ─── task rm ────────────────────────────────────────────────────────────────

var taskRemoveCmd = &cobra.Command{
	Use:   "rm TASK_ID",
	Short: "Remove a task (its award history is kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRemove,
}

func runTaskRemove(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := eng.DeleteTask(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Removed task %s\n", args[0])
	return nil
}
