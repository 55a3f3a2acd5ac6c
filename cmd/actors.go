package cmd

import (
	"github.com/spf13/cobra"
)

var actorsCmd = &cobra.Command{
	Use:   "actors",
	Short: "Manage known actors",
	Long:  `List the actors the gateway has seen and deactivate compromised ones.`,
}

func init() {
	rootCmd.AddCommand(actorsCmd)
}
