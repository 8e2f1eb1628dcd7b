package entity

import (
	"fmt"
)

type Config struct {
	Secrets     []Secret       `yaml:"secrets,omitempty"`
	ACME        ACME           `yaml:"acme"`
	Certificate Certificate    `yaml:"certificate"`
	DNS         DNSProvider    `yaml:"dns"`
	Propagation Propagation    `yaml:"propagation,omitempty"`
	StatePath   string         `yaml:"state_path,omitempty"`
	Deploy      []DeployTarget `yaml:"deploy,omitempty"`
}

func (c *Config) Validate() error {
	for i, s := range c.Secrets {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("secrets[%d]: %w", i, err)
		}
	}
	if err := c.ACME.Validate(); err != nil {
		return fmt.Errorf("acme: %w", err)
	}
	if err := c.Certificate.Validate(); err != nil {
		return fmt.Errorf("certificate: %w", err)
	}
	if err := c.DNS.Validate(); err != nil {
		return fmt.Errorf("dns: %w", err)
	}
	if err := c.Propagation.Validate(); err != nil {
		return fmt.Errorf("propagation: %w", err)
	}
	for i, t := range c.Deploy {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("deploy[%d]: %w", i, err)
		}
	}
	return nil
}

func (c *Config) GetSecretsMap() map[string]string {
	m := make(map[string]string, len(c.Secrets))
	for _, s := range c.Secrets {
		m[s.Name] = s.Value
	}
	return m
}
