package cmd

import (
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

var approvalsListState string

var approvalsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List approvals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving approvals...")
		approvals, correlation, err := cli.ListApprovals(cmd.Context(), core.ApprovalState(approvalsListState))
		if err != nil {
			return logError(err, correlation, "failed to list approvals")
		}

		t := table.NewWriter()
		t.AppendHeader(table.Row{"ID", "Actor", "Action", "Risk", "Level", "State", "Age", "Resolved By"})

		for _, a := range approvals {
			state := string(a.State)
			switch a.State {
			case core.StateApproved:
				state = color.GreenString(state)
			case core.StateDenied:
				state = color.RedString(state)
			default:
				state = color.YellowString(state)
			}

			t.AppendRow(table.Row{
				a.ID,
				truncate(a.ActorID, 25),
				a.Action,
				a.RiskScore,
				a.Escalation,
				state,
				time.Since(a.CreatedAt).Round(time.Second),
				a.ResolvedBy,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	approvalsCmd.AddCommand(approvalsListCmd)

	approvalsListCmd.Flags().StringVar(&approvalsListState, "state", "", "Filter by state (CREATED, APPROVED, DENIED)")
}
