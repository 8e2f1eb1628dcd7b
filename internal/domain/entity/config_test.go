package entity

import (
	"errors"
	"testing"

	"github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/valueobject"
)

func validConfig() Config {
	return Config{
		Secrets: []Secret{{Name: "ovh_secret", Value: "s3cret"}},
		ACME: ACME{
			Email:    "hostmaster@example.com",
			Provider: ACMEProviderLetsEncryptStaging,
		},
		Certificate: Certificate{
			Domains:  []string{"example.com", "*.example.com"},
			CertPath: "example.com.crt",
			KeyPath:  "example.com.key",
		},
		DNS: DNSProvider{
			Type: DNSProviderOVH,
			Credentials: map[string]valueobject.SecretRef{
				"endpoint":           {Plain: "ovh-eu"},
				"application_key":    {Plain: "ak"},
				"application_secret": {Secret: "ovh_secret"},
				"consumer_key":       {Plain: "ck"},
			},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}
}

func TestConfig_Validate_MissingEmail(t *testing.T) {
	cfg := validConfig()
	cfg.ACME.Email = ""
	if err := cfg.Validate(); !errors.Is(err, domain.ErrRequired) {
		t.Errorf("Validate() error = %v, want ErrRequired", err)
	}
}

func TestConfig_Validate_UnknownDNSProvider(t *testing.T) {
	cfg := validConfig()
	cfg.DNS.Type = "route53"
	if err := cfg.Validate(); !errors.Is(err, domain.ErrConfigValidateFail) {
		t.Errorf("Validate() error = %v, want ErrConfigValidateFail", err)
	}
}

func TestConfig_Validate_DeployTarget(t *testing.T) {
	cfg := validConfig()
	cfg.Deploy = []DeployTarget{{Name: "web-1", Host: "203.0.113.7", User: "deploy"}}
	if err := cfg.Validate(); !errors.Is(err, domain.ErrConfigValidateFail) {
		t.Errorf("Validate() error = %v, want ErrConfigValidateFail (no key or password)", err)
	}

	cfg.Deploy[0].KeyFile = "/home/deploy/.ssh/id_ed25519"
	cfg.Deploy[0].RemoteCert = "/etc/nginx/ssl/example.com.crt"
	cfg.Deploy[0].RemoteKey = "/etc/nginx/ssl/example.com.key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}
}

func TestConfig_GetSecretsMap(t *testing.T) {
	cfg := validConfig()
	secrets := cfg.GetSecretsMap()
	if secrets["ovh_secret"] != "s3cret" {
		t.Errorf("GetSecretsMap() missing ovh_secret")
	}

	ref := cfg.DNS.Credentials["application_secret"]
	val, err := ref.Resolve(secrets)
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	if val != "s3cret" {
		t.Errorf("Resolve() = %q, want s3cret", val)
	}
}

func TestPropagation_Defaults(t *testing.T) {
	var p Propagation
	if p.Policy() != TimeoutProceed {
		t.Errorf("Policy() = %q, want proceed", p.Policy())
	}
	if p.Wait() != domain.DefaultPropagationWait {
		t.Errorf("Wait() = %v", p.Wait())
	}
	if got := p.ResolverAddrs(); len(got) != 2 {
		t.Errorf("ResolverAddrs() = %v", got)
	}
}
