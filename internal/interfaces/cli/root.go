package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	ConfigDir   string
	ShowVersion bool
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "certops",
	Short: "ACME DNS-01 certificate operations tool",
	Long:  "Certops issues and renews TLS certificates (wildcards included) via the ACME DNS-01 challenge against a DNS provider's API.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if ShowVersion {
			fmt.Println(Version)
			os.Exit(0)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&ConfigDir, "config", "c", ".", "Configuration directory")
	rootCmd.PersistentFlags().BoolVarP(&ShowVersion, "version", "v", false, "Show version information")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newCleanupCommand())
	rootCmd.AddCommand(newValidateCommand())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
