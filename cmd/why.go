package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
)

var (
	whyActorID    string
	whyRole       string
	whyAction     string
	whyTarget     string
	whyHour       int
	whyHistorical float64
	whyScheduled  bool
)

var whyCmd = &cobra.Command{
	Use:     "why",
	Aliases: []string{"explain"},
	Short:   "Explain how a request would be decided, without deciding it",
	Long: `Dry-runs the decision pipeline and returns a detailed trace of every
check and risk factor. Nothing is committed: no rate limit is consumed,
no approval is created and no audit entry is written.

Note: This command requires a gateway server to be running and reachable.`,
	Example: `  # Why would this request be denied?
  astrogate why --actor agent-1 --role guest --action delete_database

  # How does the off-hours surcharge change the score?
  astrogate why --actor agent-1 --role developer --action read_file --hour 23`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		req := service.ExplainRequest{
			Actor: core.Actor{
				ID:     whyActorID,
				Role:   core.Role(whyRole),
				Active: true,
			},
			Action:    whyAction,
			Target:    whyTarget,
			Scheduled: whyScheduled,
		}
		if cmd.Flags().Changed("hour") {
			req.HourOfDay = &whyHour
		}
		if cmd.Flags().Changed("historical") {
			req.HistoricalAvg = &whyHistorical
		}

		resp, correlation, err := cli.Explain(cmd.Context(), req)
		if err != nil {
			return logError(err, correlation, "failed to explain request")
		}

		printTrace(resp)
		return nil
	},
}

func printTrace(resp *service.ExplainResponse) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	trace := resp.Trace

	fmt.Printf("\n%s for %s running %s\n",
		bold("Decision Trace"),
		bold(whyActorID),
		cyan(whyAction))

	fmt.Println(faint("---------------------------------------------------"))

	for _, check := range trace.Checks {
		icon := red("✖")
		if check.Passed {
			icon = green("✔")
		}
		fmt.Printf("%s %s\n", icon, bold(check.Name))
		if check.Detail != "" {
			fmt.Printf("    ↳ %s\n", faint(check.Detail))
		}
	}

	if len(trace.Factors) > 0 {
		fmt.Println()
		fmt.Println(bold("Risk factors:"))
		for _, factor := range trace.Factors {
			marker := faint("·")
			if factor.Applied {
				marker = yellow("+")
			}
			fmt.Printf("  %s %-18s %s %s\n",
				marker, factor.Name, faint(factor.Detail),
				faint(fmt.Sprintf("(running: %.3f)", factor.Running)))
		}
	}

	fmt.Println(faint("---------------------------------------------------"))

	d := trace.Decision
	switch {
	case d.Approved:
		fmt.Printf("Decision: %s (risk %.2f)\n", bold(green("approved")), d.RiskScore)
	case d.RequiresHumanApproval:
		fmt.Printf("Decision: %s to %s (risk %.2f)\n", bold(yellow("escalated")), d.Escalation, d.RiskScore)
	default:
		fmt.Printf("Decision: %s (risk %.2f)\n", bold(red("denied")), d.RiskScore)
	}
	fmt.Printf("Reason:   %s\n\n", d.Reason)
}

func init() {
	rootCmd.AddCommand(whyCmd)

	whyCmd.Flags().StringVar(&whyActorID, "actor", "", "Actor ID to simulate")
	whyCmd.Flags().StringVar(&whyRole, "role", "", "Role of the actor")
	whyCmd.Flags().StringVar(&whyAction, "action", "", "Action to simulate")
	whyCmd.Flags().StringVar(&whyTarget, "target", "", "Target resource (optional)")
	whyCmd.Flags().IntVar(&whyHour, "hour", 0, "Hour of day 0-23 (optional)")
	whyCmd.Flags().Float64Var(&whyHistorical, "historical", 0, "Historical risk average 0-1 (optional)")
	whyCmd.Flags().BoolVar(&whyScheduled, "scheduled", false, "Simulate a scheduled/batch request")

	_ = whyCmd.MarkFlagRequired("actor")
	_ = whyCmd.MarkFlagRequired("role")
	_ = whyCmd.MarkFlagRequired("action")
}
