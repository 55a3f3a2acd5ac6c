package cmd

import (
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/pkg/client"
)

var (
	auditLogRole     string
	auditLogActor    string
	auditLogAction   string
	auditLogResource string
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit ledger entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching audit entries...")
		audits, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:    uint(limit),
			Role:     auditLogRole,
			ActorID:  auditLogActor,
			Action:   auditLogAction,
			Resource: auditLogResource,
		})
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit entries")
		}

		log.Info().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.AppendHeader(table.Row{
			"Seq", "Time", "Actor", "Action", "Resource", "Outcome", "Risk",
		})

		for _, e := range audits {
			t.AppendRow(table.Row{
				e.Seq,
				e.Time.Format(time.RFC3339),
				truncate(e.ActorID, 25),
				e.Action,
				truncate(e.Resource, 30),
				colorOutcome(e.Outcome),
				e.RiskScore,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func colorOutcome(outcome core.Outcome) string {
	switch outcome {
	case core.OutcomeApproved, core.OutcomeSuccess:
		return color.GreenString(string(outcome))
	case core.OutcomeDenied, core.OutcomeFailure:
		return color.RedString(string(outcome))
	case core.OutcomeEscalated:
		return color.YellowString(string(outcome))
	default:
		return string(outcome)
	}
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().StringVar(&auditLogRole, "as-role", "", "Gateway role to query as (needs view-audit)")
	auditLogCmd.Flags().StringVar(&auditLogActor, "actor", "", "Filter by actor ID")
	auditLogCmd.Flags().StringVar(&auditLogAction, "action", "", "Filter by action")
	auditLogCmd.Flags().StringVar(&auditLogResource, "resource", "", "Filter by resource")
}
