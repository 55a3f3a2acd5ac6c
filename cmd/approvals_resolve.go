package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api"
)

var (
	resolveApprove    bool
	resolveDeny       bool
	resolveResolvedBy string
	resolveRole       string
)

var approvalsResolveCmd = &cobra.Command{
	Use:   "resolve APPROVAL-ID",
	Short: "Approve or deny a pending approval",
	Example: `  astrogate approvals resolve d0bk3... --approve --by alice
  astrogate approvals resolve d0bk3... --deny --by bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if resolveApprove == resolveDeny {
			return fmt.Errorf("exactly one of --approve or --deny is required")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		approval, correlation, err := cli.ResolveApproval(cmd.Context(), id, api.ResolvePayload{
			Approve:      resolveApprove,
			ResolvedBy:   resolveResolvedBy,
			ResolverRole: resolveRole,
		})
		if err != nil {
			return logError(err, correlation, "failed to resolve approval")
		}

		logSuccess("approval %s is now %s", bold(approval.ID), bold(string(approval.State)))
		if approval.ResolvedAt != nil {
			fmt.Printf("  %s: %s by %s\n",
				faint("resolved"),
				approval.ResolvedAt.Format("2006-01-02 15:04:05"),
				color.New(color.Bold).Sprint(approval.ResolvedBy))
		}
		return nil
	},
}

func init() {
	approvalsCmd.AddCommand(approvalsResolveCmd)

	approvalsResolveCmd.Flags().BoolVar(&resolveApprove, "approve", false, "Approve the request")
	approvalsResolveCmd.Flags().BoolVar(&resolveDeny, "deny", false, "Deny the request")
	approvalsResolveCmd.Flags().StringVar(&resolveResolvedBy, "by", "", "Name of the reviewer")
	approvalsResolveCmd.Flags().StringVar(&resolveRole, "as-role", "", "Gateway role of the reviewer (needs resolve-approvals)")

	_ = approvalsResolveCmd.MarkFlagRequired("by")
}
