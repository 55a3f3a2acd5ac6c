package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Dump the parsed configuration",
	Long: `Loads and validates the gateway config file, then prints the parsed
structure. Signing secrets are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}

		// never print key material
		cfg.Signing.Active.Secret = "<redacted>"
		for i := range cfg.Signing.Retired {
			cfg.Signing.Retired[i].Secret = "<redacted>"
		}

		fmt.Print(spew.Sdump(cfg))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
