package entity

import (
	"fmt"

	"github.com/lite-lake/infra-certops/internal/domain"
)

// Certificate is the operator's request: the names to cover and where the
// issued artifacts land. Zone overrides the registered-zone derivation for
// setups where the delegated zone is deeper than two labels.
type Certificate struct {
	Domains  []string `yaml:"domains"`
	CertPath string   `yaml:"cert_path"`
	KeyPath  string   `yaml:"key_path"`
	Zone     string   `yaml:"zone,omitempty"`
}

func (c *Certificate) Validate() error {
	if len(c.Domains) == 0 {
		return domain.RequiredField("certificate domains")
	}
	seen := make(map[string]bool, len(c.Domains))
	for i, d := range c.Domains {
		if err := ValidateDomainName(d); err != nil {
			return fmt.Errorf("domains[%d]: %w", i, err)
		}
		if seen[d] {
			return fmt.Errorf("%w: duplicate domain %s", domain.ErrConfigValidateFail, d)
		}
		seen[d] = true
	}
	if c.CertPath == "" {
		return domain.RequiredField("cert_path")
	}
	if c.KeyPath == "" {
		return domain.RequiredField("key_path")
	}
	if c.Zone != "" {
		if err := ValidateDomainName(c.Zone); err != nil {
			return fmt.Errorf("zone: %w", err)
		}
	}
	return nil
}

// ZoneFor resolves the DNS zone a requested name lives in.
func (c *Certificate) ZoneFor(name string) string {
	if c.Zone != "" {
		return c.Zone
	}
	return RegisteredZone(name)
}

// Zones returns every distinct zone implied by the request, in first
// appearance order.
func (c *Certificate) Zones() []string {
	var zones []string
	seen := make(map[string]bool)
	for _, d := range c.Domains {
		z := c.ZoneFor(d)
		if !seen[z] {
			seen[z] = true
			zones = append(zones, z)
		}
	}
	return zones
}
