package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"gopkg.in/yaml.v3"
)

// ConfigLoader reads config.yaml plus an optional secrets.yaml from a
// directory. Secrets live in their own file so config.yaml can be committed.
type ConfigLoader struct {
	baseDir string
}

func NewConfigLoader(baseDir string) *ConfigLoader {
	return &ConfigLoader{baseDir: baseDir}
}

func (l *ConfigLoader) Load() (*entity.Config, error) {
	configPath := filepath.Join(l.baseDir, "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConfigReadFailed, configPath, err)
	}

	cfg := &entity.Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConfigParseFailed, configPath, err)
	}

	secretsPath := filepath.Join(l.baseDir, "secrets.yaml")
	if _, err := os.Stat(secretsPath); err == nil {
		if err := loadSecrets(secretsPath, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (l *ConfigLoader) Validate(cfg *entity.Config) error {
	if cfg == nil {
		return domain.ErrConfigNotLoaded
	}
	return cfg.Validate()
}

func loadSecrets(filePath string, cfg *entity.Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrConfigReadFailed, filePath, err)
	}

	var raw struct {
		Secrets []entity.Secret `yaml:"secrets"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrConfigParseFailed, filePath, err)
	}

	cfg.Secrets = append(cfg.Secrets, raw.Secrets...)
	return nil
}
