package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/streax-app/streax/internal/app/engine"
	"github.com/streax-app/streax/internal/domain"
)

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringP("date", "d", "", "Day to process, YYYY-MM-DD (default today)")
	processCmd.Flags().StringSliceP("done", "D", nil, "Task IDs completed on that day")
}

var processCmd = &cobra.Command{
	Use:   "process USER_ID",
	Short: "Process a day's completions for a user",
	Long: `Process a day's task completions: award XP, advance the level
and update the streak. Reprocessing an already-processed day is a
no-op; days earlier than the last processed one are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	dateStr, _ := cmd.Flags().GetString("date")
	done, _ := cmd.Flags().GetStringSlice("done")

	var day domain.Date
	if dateStr != "" {
		var err error
		day, err = domain.ParseDate(dateStr)
		if err != nil {
			return err
		}
	}

	marks := make([]engine.TaskMark, 0, len(done))
	for _, id := range done {
		marks = append(marks, engine.TaskMark{TaskID: id, Completed: true})
	}

	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := eng.Process(context.Background(), args[0], day, marks)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Processed %s for %s\n", res.Day, res.UserID)
	fmt.Fprintf(os.Stdout, "XP awarded: %d\n", res.TotalXP)
	if res.LevelUp {
		fmt.Fprintf(os.Stdout, "Level up! Now level %d (+%d)\n", res.NewLevel, res.LevelsGained)
	}
	fmt.Fprintf(os.Stdout, "Streak: %d day(s)\n", res.StreakDays)
	for _, o := range res.Outcomes {
		switch {
		case o.Rejected != "":
			fmt.Fprintf(os.Stdout, "  %s: rejected (%s)\n", o.TaskID, o.Rejected)
		case o.Duplicate:
			fmt.Fprintf(os.Stdout, "  %s: already logged\n", o.TaskID)
		case o.Completed:
			fmt.Fprintf(os.Stdout, "  %s: +%d XP\n", o.TaskID, o.XPAwarded)
		}
	}
	return nil
}
