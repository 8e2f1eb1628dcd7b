package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-certops/internal/application/challenge"
)

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove leftover _acme-challenge records",
		Long:  "Delete every _acme-challenge TXT record in the configured zones and drain records journaled by a crashed run. Independent of any ACME order.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runCleanup()
		},
	}
}

func runCleanup() {
	cfg := loadConfig()

	cleaner := challenge.NewCleaner(buildGateway(cfg), buildJournal(cfg), cfg)
	if err := cleaner.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Cleanup finished with errors: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Cleanup complete.")
}
