// Package cli implements the streax command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/streax-app/streax/internal/app/engine"
	"github.com/streax-app/streax/internal/daemon"
	"github.com/streax-app/streax/internal/infra/sqlite"
)

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "streax",
	Short: "Gamified habit tracking engine",
	Long: `StreaX turns daily tasks into XP, levels and streaks.
Run 'streax serve' to start the HTTP API, or use the subcommands to
manage users and tasks and to process days directly against the local
database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.streax/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default from config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for this invocation.
func loadConfig() (daemon.Config, error) {
	path := configPath
	if path == "" {
		path = daemon.DefaultConfigPath()
	}
	cfg, err := daemon.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return cfg, nil
}

// openEngine opens the local database and builds an engine over it.
// The caller must Close the returned DB.
func openEngine() (*engine.Service, *sqlite.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(db, cfg.Bonus()), db, nil
}
