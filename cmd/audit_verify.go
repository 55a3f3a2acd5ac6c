package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// auditVerifyCmd represents the audit verify command
var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the audit ledger",
	Long: `Asks the server to recompute every ledger signature and report entries
whose signatures no longer match their content.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		report, correlation, err := cli.VerifyLedger(cmd.Context())
		if err != nil {
			return logError(err, correlation, "ledger verification failed")
		}

		if report.Valid {
			logSuccess("ledger intact, %d entries verified", report.Checked)
			return nil
		}

		log.Error().Msgf("%s ledger verification FAILED, %d of %d entries tampered",
			redCross, len(report.TamperedIDs), report.Checked)
		for _, id := range report.TamperedIDs {
			log.Error().Msgf("  tampered: %s", id)
		}
		return BeQuietError{}
	},
}

func init() {
	auditCmd.AddCommand(auditVerifyCmd)
}
