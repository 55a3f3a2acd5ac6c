package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
)

var (
	evalActorID    string
	evalRole       string
	evalAction     string
	evalTarget     string
	evalHour       int
	evalHistorical float64
	evalScheduled  bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Request a governance decision for an action",
	Long: `Submits an action request to the gateway. The decision is recorded in
the audit ledger whether it is approved, denied or escalated.`,
	Example: `  astrogate evaluate --actor agent-1 --role developer --action read_file --target /tmp/data.csv
  astrogate evaluate --actor agent-1 --role admin --action deploy_service --target prod-cluster --scheduled`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		req := service.EvaluateRequest{
			Actor: core.Actor{
				ID:     evalActorID,
				Role:   core.Role(evalRole),
				Active: true,
			},
			Action:    evalAction,
			Target:    evalTarget,
			Scheduled: evalScheduled,
		}
		if cmd.Flags().Changed("hour") {
			req.HourOfDay = &evalHour
		}
		if cmd.Flags().Changed("historical") {
			req.HistoricalAvg = &evalHistorical
		}

		resp, correlation, err := cli.Evaluate(cmd.Context(), req)
		if err != nil {
			return logError(err, correlation, "evaluation failed")
		}

		printDecision(resp)
		return nil
	},
}

func printDecision(resp *service.EvaluateResponse) {
	d := resp.Decision

	verdict := color.RedString("denied")
	if d.Approved {
		verdict = color.GreenString("approved")
	} else if d.RequiresHumanApproval {
		verdict = color.YellowString("escalated")
	}

	fmt.Printf("\n%s %s\n", bold("Decision:"), bold(verdict))
	fmt.Printf("  %s: %.2f\n", faint("risk score"), d.RiskScore)
	fmt.Printf("  %s: %s\n", faint("reason"), d.Reason)
	if d.RequiresHumanApproval {
		fmt.Printf("  %s: %s\n", faint("escalation"), d.Escalation)
	}
	if resp.Approval != nil {
		fmt.Printf("  %s: %s\n", faint("approval id"), bold(resp.Approval.ID))
		log.Info().Msgf("Run '%s' once a reviewer signed off.",
			color.CyanString("astrogate approvals resolve "+resp.Approval.ID+" --approve"))
	}
	if resp.AuditDeferred {
		log.Warn().Msg("audit entry was deferred, the ledger was unreachable")
	}
	fmt.Printf("  %s: %s\n\n", faint("audit id"), resp.AuditID)
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalActorID, "actor", "", "Actor ID requesting the action")
	evaluateCmd.Flags().StringVar(&evalRole, "role", "", "Role of the actor")
	evaluateCmd.Flags().StringVar(&evalAction, "action", "", "Action to evaluate")
	evaluateCmd.Flags().StringVar(&evalTarget, "target", "", "Target resource (optional)")
	evaluateCmd.Flags().IntVar(&evalHour, "hour", 0, "Hour of day 0-23 (optional)")
	evaluateCmd.Flags().Float64Var(&evalHistorical, "historical", 0, "Historical risk average 0-1 (optional)")
	evaluateCmd.Flags().BoolVar(&evalScheduled, "scheduled", false, "Mark the request as scheduled/batch")

	_ = evaluateCmd.MarkFlagRequired("actor")
	_ = evaluateCmd.MarkFlagRequired("role")
	_ = evaluateCmd.MarkFlagRequired("action")
}
