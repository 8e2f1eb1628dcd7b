package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-certops/internal/application/challenge"
	"github.com/lite-lake/infra-certops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-certops/internal/providers/ssl"
	sshclient "github.com/lite-lake/infra-certops/internal/ssh"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Obtain or renew the configured certificate",
		Long:  "Run one issuance pass: place the ACME order, publish the DNS-01 records, wait for propagation, validate, finalize and write the certificate. Records created during the run are always deleted, success or failure.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runIssuance()
		},
	}
}

func runIssuance() {
	cfg := loadConfig()
	secrets := cfg.GetSecretsMap()

	acmeClient, err := ssl.NewClient(&cfg.ACME, secrets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating ACME client: %v\n", err)
		os.Exit(1)
	}

	gateway := buildGateway(cfg)
	verifier := challenge.NewVerifier(cfg.Propagation.ResolverAddrs(), nil)
	journal := buildJournal(cfg)

	// SIGINT/SIGTERM cancel the run; the orchestrator still cleans up the
	// records it created before exiting.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator := challenge.NewOrchestrator(acmeClient, gateway, verifier, journal, cfg)
	outcome := orchestrator.Run(ctx)

	if outcome.CleanupIncomplete() {
		fmt.Fprintf(os.Stderr, "Warning: %d challenge record(s) could not be removed:\n", len(outcome.Leftover))
		for _, r := range outcome.Leftover {
			fmt.Fprintf(os.Stderr, "  zone=%s id=%s name=%s\n", r.Zone, r.RecordID, r.Name)
		}
	}

	if !outcome.Issued {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", outcome.Reason)
		os.Exit(1)
	}

	fmt.Printf("Certificate issued: %s (expires %s)\n", cfg.Certificate.CertPath, outcome.NotAfter.Format("2006-01-02"))

	if len(cfg.Deploy) > 0 {
		deployer := sshclient.NewDeployer(secrets)
		if err := deployer.DeployAll(cfg.Deploy, outcome.ChainPEM, outcome.KeyPEM); err != nil {
			logger.Error("deployment finished with errors", "error", err)
			fmt.Fprintf(os.Stderr, "Deploy errors: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Certificate deployed to %d target(s)\n", len(cfg.Deploy))
	}
}
