package cmd

import (
	"github.com/spf13/cobra"
)

var actorsDeactivateCmd = &cobra.Command{
	Use:   "deactivate <actor-id>",
	Short: "Deactivate an actor",
	Long: `Flag an actor as inactive. Every later evaluate request from the
actor is denied. The record stays in the directory so past audit
entries keep resolving to a stable identity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		correlation, err := cli.DeactivateActor(cmd.Context(), args[0])
		if err != nil {
			return logError(err, correlation, "failed to deactivate actor")
		}

		logSuccess("actor %s deactivated", bold(args[0]))
		return nil
	},
}

func init() {
	actorsCmd.AddCommand(actorsDeactivateCmd)
}
