package cmd

import (
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Administrative audit commands",
	Long:  `View audit ledger entries and verify their signatures. Requires an authenticated operator session (astrogate login).`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
