package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long:  "Load config.yaml and secrets.yaml from the configuration directory and check them without touching the network.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			loadConfig()
			fmt.Println("Configuration is valid.")
		},
	}
}
