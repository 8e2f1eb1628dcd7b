package ssl

import (
	"fmt"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
)

const (
	LetsEncryptProductionURL = "https://acme-v02.api.letsencrypt.org/directory"
	LetsEncryptStagingURL    = "https://acme-staging-v02.api.letsencrypt.org/directory"
	ZeroSSLProductionURL     = "https://acme.zerossl.com/v2/DV90"
)

// DirectoryURL resolves the ACME directory endpoint for a configured
// provider. An explicit directory override in the config wins.
func DirectoryURL(cfg *entity.ACME) (string, error) {
	if cfg.Directory != "" {
		return cfg.Directory, nil
	}
	switch cfg.Provider {
	case entity.ACMEProviderLetsEncrypt:
		return LetsEncryptProductionURL, nil
	case entity.ACMEProviderLetsEncryptStaging:
		return LetsEncryptStagingURL, nil
	case entity.ACMEProviderZeroSSL:
		return ZeroSSLProductionURL, nil
	default:
		return "", fmt.Errorf("%w: unknown acme provider %q", domainerr.ErrConfigValidateFail, cfg.Provider)
	}
}
