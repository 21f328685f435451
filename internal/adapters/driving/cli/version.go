package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "Print the docsync version and the store schema version it migrates to.",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("docsync version %s\n", version)
		if wiring.SchemaVersion > 0 {
			cmd.Printf("store schema v%d\n", wiring.SchemaVersion)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
