package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lite-lake/infra-certops/internal/domain"
)

// WriteCertificate writes the PEM chain and private key atomically. The key
// gets 0600, the chain 0644. A reload that races the write sees either the
// old pair or the new one, never a truncated file.
func WriteCertificate(certPath, keyPath string, chainPEM, keyPEM []byte) error {
	if err := writeAtomic(keyPath, keyPEM, 0600); err != nil {
		return domain.WrapOp("write private key", err)
	}
	if err := writeAtomic(certPath, chainPEM, 0644); err != nil {
		return domain.WrapOp("write certificate chain", err)
	}
	return nil
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
