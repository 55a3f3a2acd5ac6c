package cmd

import (
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage operator session tokens",
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
