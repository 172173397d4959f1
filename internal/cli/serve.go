package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/streax-app/streax/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the StreaX HTTP API server",
	Long: `Start the long-running daemon serving the REST API, the live
event feed and (when enabled) Prometheus metrics. The server shuts
down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}
	return d.Run(context.Background())
}
