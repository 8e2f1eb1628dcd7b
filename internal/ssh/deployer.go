package ssh

import (
	"errors"
	"fmt"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"github.com/lite-lake/infra-certops/internal/infrastructure/logger"
)

// Deployer pushes an issued certificate pair to the configured targets and
// runs each target's reload command. Targets are independent; one failing
// host does not stop the others.
type Deployer struct {
	secrets map[string]string
	log     *logger.Logger
}

func NewDeployer(secrets map[string]string) *Deployer {
	return &Deployer{
		secrets: secrets,
		log:     logger.L().With("component", "deployer"),
	}
}

// DeployAll uploads chainPEM and keyPEM to every target. The key lands with
// 0600, the chain with 0644, matching the local artifacts.
func (d *Deployer) DeployAll(targets []entity.DeployTarget, chainPEM, keyPEM []byte) error {
	var errs []error
	for i := range targets {
		target := &targets[i]
		if err := d.deployOne(target, chainPEM, keyPEM); err != nil {
			d.log.Error("deploy failed", "target", target.Name, "error", err)
			errs = append(errs, domainerr.WrapEntity("deploy target", target.Name, err))
			continue
		}
		d.log.Info("certificate deployed", "target", target.Name, "host", target.Addr())
	}
	return errors.Join(errs...)
}

func (d *Deployer) deployOne(target *entity.DeployTarget, chainPEM, keyPEM []byte) error {
	client, err := NewClient(target, d.secrets)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.UploadBytes(chainPEM, target.RemoteCert, 0644); err != nil {
		return err
	}
	if err := client.UploadBytes(keyPEM, target.RemoteKey, 0600); err != nil {
		return err
	}

	if target.ReloadCommand != "" {
		stdout, stderr, err := client.Run(target.ReloadCommand)
		if err != nil {
			return fmt.Errorf("reload command failed: %w: %s", err, stderr)
		}
		d.log.Debug("reload command finished", "target", target.Name, "stdout", stdout)
	}
	return nil
}
