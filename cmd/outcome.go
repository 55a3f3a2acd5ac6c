package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
)

var (
	outcomeActorID  string
	outcomeRole     string
	outcomeAction   string
	outcomeResource string
	outcomeFailed   bool
	outcomeDetail   string
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record the execution result of an approved action",
	Long: `Reports back what actually happened after an approved action executed.
This writes a second audit entry correlated with the original decision.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		entry, correlation, err := cli.RecordOutcome(cmd.Context(), service.OutcomeRequest{
			ActorID:  outcomeActorID,
			Role:     core.Role(outcomeRole),
			Action:   outcomeAction,
			Resource: outcomeResource,
			Success:  !outcomeFailed,
			Detail:   outcomeDetail,
		})
		if err != nil {
			return logError(err, correlation, "failed to record outcome")
		}

		logSuccess("outcome recorded as %s (audit id: %s)", bold(string(entry.Outcome)), entry.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outcomeCmd)

	outcomeCmd.Flags().StringVar(&outcomeActorID, "actor", "", "Actor ID that executed the action")
	outcomeCmd.Flags().StringVar(&outcomeRole, "role", "", "Role of the actor")
	outcomeCmd.Flags().StringVar(&outcomeAction, "action", "", "Action that was executed")
	outcomeCmd.Flags().StringVar(&outcomeResource, "resource", "", "Target resource (optional)")
	outcomeCmd.Flags().BoolVar(&outcomeFailed, "failed", false, "Mark the execution as failed")
	outcomeCmd.Flags().StringVar(&outcomeDetail, "detail", "", "Free-form execution detail (optional)")

	_ = outcomeCmd.MarkFlagRequired("actor")
	_ = outcomeCmd.MarkFlagRequired("role")
	_ = outcomeCmd.MarkFlagRequired("action")
}
