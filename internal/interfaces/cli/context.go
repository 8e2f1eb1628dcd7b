package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lite-lake/infra-certops/internal/application/challenge"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"github.com/lite-lake/infra-certops/internal/infrastructure/persistence"
	"github.com/lite-lake/infra-certops/internal/infrastructure/state"
	dnsprovider "github.com/lite-lake/infra-certops/internal/providers/dns"
)

func loadConfig() *entity.Config {
	loader := persistence.NewConfigLoader(ConfigDir)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := loader.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func buildGateway(cfg *entity.Config) *challenge.Gateway {
	provider, err := dnsprovider.NewFactory().Create(&cfg.DNS, cfg.GetSecretsMap())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating DNS provider: %v\n", err)
		os.Exit(1)
	}
	return challenge.NewGateway(provider, nil)
}

func buildJournal(cfg *entity.Config) *state.Journal {
	path := cfg.StatePath
	if path == "" {
		path = filepath.Join(ConfigDir, "certops-state.yaml")
	}
	return state.NewJournal(path)
}
