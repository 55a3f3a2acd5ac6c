package cmd

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage background tasks",
	Long:  `List, trigger and inspect the gateway's background tasks (approval sweep, limit sweep, audit retry).`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
