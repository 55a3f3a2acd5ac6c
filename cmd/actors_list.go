package cmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var actorsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List known actors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving actors...")
		actors, correlation, err := cli.ListActors(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to list actors")
		}

		t := table.NewWriter()
		t.AppendHeader(table.Row{"ID", "Name", "Role", "Active", "Sessions"})

		for _, a := range actors {
			active := greenCheck
			if !a.Active {
				active = redCross
			}
			t.AppendRow(table.Row{
				a.ID,
				truncate(a.DisplayName, 25),
				a.Role,
				active,
				truncate(strings.Join(a.Sessions, ", "), 40),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	actorsCmd.AddCommand(actorsListCmd)
}
