package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/streax-app/streax/internal/api"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the streax version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "streax %s\n", api.Version)
	},
}
