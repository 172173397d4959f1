package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(statsCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

// ─── user create ────────────────────────────────────────────────────────────

var userCreateCmd = &cobra.Command{
	Use:   "create USER_ID",
	Short: "Create a user with fresh stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserCreate,
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	view, created, err := eng.ProvisionUser(context.Background(), args[0])
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(os.Stdout, "Created user %s (level %d, 0 XP)\n", view.UserID, view.Level)
	} else {
		fmt.Fprintf(os.Stdout, "User %s already exists\n", view.UserID)
	}
	return nil
}

// ─── stats ──────────────────────────────────────────────────────────────────

var statsCmd = &cobra.Command{
	Use:   "stats USER_ID",
	Short: "Show a user's level, XP and streak",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	view, err := eng.GetStats(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "User:    %s\n", view.UserID)
	fmt.Fprintf(os.Stdout, "Level:   %d\n", view.Level)
	fmt.Fprintf(os.Stdout, "XP:      %d / %d\n", view.XP, view.NextLevelThreshold)
	fmt.Fprintf(os.Stdout, "Streak:  %d day(s)\n", view.StreakDays)
	if !view.LastProcessedDay.IsZero() {
		fmt.Fprintf(os.Stdout, "Last processed: %s\n", view.LastProcessedDay)
	}
	return nil
}
