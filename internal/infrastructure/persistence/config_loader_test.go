package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
)

const sampleConfig = `
acme:
  email: hostmaster@example.com
  provider: letsencrypt-staging
certificate:
  domains:
    - example.com
    - "*.example.com"
  cert_path: /var/lib/certops/example.com.crt
  key_path: /var/lib/certops/example.com.key
dns:
  type: ovh
  credentials:
    endpoint: ovh-eu
    application_key: ak
    application_secret:
      secret: ovh_app_secret
    consumer_key: ck
propagation:
  wait_seconds: 90
  on_timeout: abort
`

const sampleSecrets = `
secrets:
  - name: ovh_app_secret
    value: hunter2
`

func writeConfigDir(t *testing.T, config, secrets string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	if secrets != "" {
		if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), []byte(secrets), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestConfigLoader_Load(t *testing.T) {
	dir := writeConfigDir(t, sampleConfig, sampleSecrets)

	loader := NewConfigLoader(dir)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}
	if err := loader.Validate(cfg); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	if len(cfg.Certificate.Domains) != 2 {
		t.Errorf("expected 2 domains, got %d", len(cfg.Certificate.Domains))
	}
	if cfg.DNS.Type != entity.DNSProviderOVH {
		t.Errorf("dns type = %q, want ovh", cfg.DNS.Type)
	}
	if cfg.Propagation.WaitSeconds != 90 {
		t.Errorf("wait_seconds = %d, want 90", cfg.Propagation.WaitSeconds)
	}
	if cfg.Propagation.Policy() != entity.TimeoutAbort {
		t.Errorf("on_timeout = %q, want abort", cfg.Propagation.Policy())
	}

	ref := cfg.DNS.Credentials["application_secret"]
	secret, err := ref.Resolve(cfg.GetSecretsMap())
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	if secret != "hunter2" {
		t.Errorf("resolved secret = %q, want hunter2", secret)
	}
}

func TestConfigLoader_Load_MissingFile(t *testing.T) {
	loader := NewConfigLoader(t.TempDir())
	if _, err := loader.Load(); !errors.Is(err, domain.ErrConfigReadFailed) {
		t.Errorf("Load() error = %v, want ErrConfigReadFailed", err)
	}
}

func TestConfigLoader_Load_UnresolvableSecret(t *testing.T) {
	dir := writeConfigDir(t, sampleConfig, "")

	loader := NewConfigLoader(dir)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	ref2 := cfg.DNS.Credentials["application_secret"]
	_, err = ref2.Resolve(cfg.GetSecretsMap())
	if !errors.Is(err, domain.ErrMissingSecret) {
		t.Errorf("Resolve() error = %v, want ErrMissingSecret", err)
	}
}
