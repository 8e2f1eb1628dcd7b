package entity

import (
	"fmt"
	"strings"

	"github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/valueobject"
)

type ACMEProvider string

const (
	ACMEProviderLetsEncrypt        ACMEProvider = "letsencrypt"
	ACMEProviderLetsEncryptStaging ACMEProvider = "letsencrypt-staging"
	ACMEProviderZeroSSL            ACMEProvider = "zerossl"
)

// ACME describes the certificate authority side of a run. Directory
// overrides Provider when set, so any RFC 8555 endpoint can be used.
type ACME struct {
	Email      string                 `yaml:"email"`
	Provider   ACMEProvider           `yaml:"provider,omitempty"`
	Directory  string                 `yaml:"directory,omitempty"`
	EABKid     string                 `yaml:"eab_kid,omitempty"`
	EABHmacKey *valueobject.SecretRef `yaml:"eab_hmac_key,omitempty"`
}

func (a *ACME) Validate() error {
	if a.Email == "" {
		return domain.RequiredField("acme email")
	}
	if !strings.Contains(a.Email, "@") {
		return fmt.Errorf("%w: acme email %q", domain.ErrConfigValidateFail, a.Email)
	}
	if a.Directory == "" {
		switch a.Provider {
		case ACMEProviderLetsEncrypt, ACMEProviderLetsEncryptStaging, ACMEProviderZeroSSL:
		case "":
			return domain.RequiredField("acme provider or directory")
		default:
			return fmt.Errorf("%w: unknown acme provider %q", domain.ErrConfigValidateFail, a.Provider)
		}
	}
	if a.Provider == ACMEProviderZeroSSL && a.Directory == "" {
		if a.EABKid == "" || a.EABHmacKey == nil {
			return fmt.Errorf("%w: zerossl requires eab_kid and eab_hmac_key", domain.ErrConfigValidateFail)
		}
	}
	return nil
}
