package cmd

import (
	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Violet",
	Long:  `All software has versions. This is Violet's`,
	Run: func(cmd *cobra.Command, args []string) {
		message.Info("%s", version.FullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
