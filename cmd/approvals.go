package cmd

import (
	"github.com/spf13/cobra"
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Manage pending approvals",
	Long:  `List and resolve escalated requests waiting for human sign-off.`,
}

func init() {
	rootCmd.AddCommand(approvalsCmd)
}
