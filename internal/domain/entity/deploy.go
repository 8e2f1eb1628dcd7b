package entity

import (
	"fmt"

	"github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/valueobject"
)

// DeployTarget pushes the issued chain and key to a server over SFTP and
// optionally runs a reload command afterwards.
type DeployTarget struct {
	Name          string                 `yaml:"name"`
	Host          string                 `yaml:"host"`
	Port          int                    `yaml:"port,omitempty"`
	User          string                 `yaml:"user"`
	KeyFile       string                 `yaml:"key_file,omitempty"`
	Password      *valueobject.SecretRef `yaml:"password,omitempty"`
	RemoteCert    string                 `yaml:"remote_cert"`
	RemoteKey     string                 `yaml:"remote_key"`
	ReloadCommand string                 `yaml:"reload_command,omitempty"`

	// InsecureSkipHostKey disables known_hosts verification. Only for
	// throwaway environments.
	InsecureSkipHostKey bool `yaml:"insecure_skip_host_key,omitempty"`
}

func (t *DeployTarget) Validate() error {
	if t.Name == "" {
		return domain.RequiredField("deploy target name")
	}
	if t.Host == "" {
		return domain.RequiredField("deploy target host")
	}
	if t.User == "" {
		return domain.RequiredField("deploy target user")
	}
	if t.Port < 0 || t.Port > 65535 {
		return fmt.Errorf("%w: deploy target port %d", domain.ErrConfigValidateFail, t.Port)
	}
	if t.KeyFile == "" && t.Password == nil {
		return fmt.Errorf("%w: deploy target needs key_file or password", domain.ErrConfigValidateFail)
	}
	if t.RemoteCert == "" {
		return domain.RequiredField("remote_cert")
	}
	if t.RemoteKey == "" {
		return domain.RequiredField("remote_key")
	}
	return nil
}

func (t *DeployTarget) Addr() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", t.Host, port)
}
