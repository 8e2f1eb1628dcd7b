package challenge

import (
	"time"

	"github.com/lite-lake/infra-certops/internal/domain/entity"
)

// RunOutcome is the terminal result of one orchestration pass. Leftover
// holds records the cleanup phase could not delete; it never flips Issued,
// a run that validated and finalized is issued even if a delete failed.
type RunOutcome struct {
	Issued   bool
	ChainPEM []byte
	KeyPEM   []byte
	NotAfter time.Time

	// Reason is set when Issued is false.
	Reason error

	Leftover []entity.ProvisionedRecord
}

// CleanupIncomplete reports whether any provisioned record survived the
// cleanup phase.
func (o *RunOutcome) CleanupIncomplete() bool {
	return len(o.Leftover) > 0
}
