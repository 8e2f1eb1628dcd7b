package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"gopkg.in/yaml.v3"
)

// Journal persists the TXT records a run has provisioned so that a crashed
// run leaves enough on disk for the next invocation to delete them. The file
// is flock-guarded; two concurrent runs against the same state path serialize
// on it.
type Journal struct {
	path  string
	flock *flock.Flock
}

type journalFile struct {
	Records []entity.ProvisionedRecord `yaml:"records"`
}

func NewJournal(path string) *Journal {
	return &Journal{
		path:  path,
		flock: flock.New(path + ".lock"),
	}
}

// Records returns the journaled records. A missing file is an empty journal.
func (j *Journal) Records() ([]entity.ProvisionedRecord, error) {
	if err := j.flock.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	defer j.flock.Unlock()

	return j.read()
}

// Append adds records to the journal. Records already present (same zone and
// record ID) are kept once.
func (j *Journal) Append(records ...entity.ProvisionedRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := j.flock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer j.flock.Unlock()

	existing, err := j.read()
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.Key()] = true
	}
	for _, r := range records {
		if !seen[r.Key()] {
			existing = append(existing, r)
			seen[r.Key()] = true
		}
	}

	return j.write(existing)
}

// Remove drops a record from the journal once its provider-side deletion
// succeeded. Removing a record that is not journaled is a no-op.
func (j *Journal) Remove(record entity.ProvisionedRecord) error {
	if err := j.flock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer j.flock.Unlock()

	existing, err := j.read()
	if err != nil {
		return err
	}

	kept := existing[:0]
	for _, r := range existing {
		if r.Key() != record.Key() {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(existing) {
		return nil
	}

	return j.write(kept)
}

// Clear empties the journal.
func (j *Journal) Clear() error {
	if err := j.flock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer j.flock.Unlock()

	return j.write(nil)
}

func (j *Journal) read() ([]entity.ProvisionedRecord, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateReadFailed, j.path, err)
	}

	var file journalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateReadFailed, j.path, err)
	}
	return file.Records, nil
}

func (j *Journal) write(records []entity.ProvisionedRecord) error {
	data, err := yaml.Marshal(journalFile{Records: records})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStateWriteFailed, j.path, err)
	}

	tmpPath := filepath.Join(filepath.Dir(j.path), "."+filepath.Base(j.path)+".tmp")
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStateWriteFailed, tmpPath, err)
	}
	if err := os.Rename(tmpPath, j.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", domain.ErrStateWriteFailed, j.path, err)
	}
	return nil
}
