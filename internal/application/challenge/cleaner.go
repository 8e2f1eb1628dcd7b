package challenge

import (
	"context"
	"errors"

	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"github.com/lite-lake/infra-certops/internal/infrastructure/logger"
)

// Cleaner removes leftover challenge records outside any ACME order: crash
// recovery and pre-flight hygiene. It shares the gateway's idempotent delete
// contract, so running it against a clean zone is a no-op.
type Cleaner struct {
	gateway *Gateway
	journal RecordJournal
	cfg     *entity.Config
	log     *logger.Logger
}

func NewCleaner(gateway *Gateway, journal RecordJournal, cfg *entity.Config) *Cleaner {
	return &Cleaner{
		gateway: gateway,
		journal: journal,
		cfg:     cfg,
		log:     logger.L().With("component", "cleaner"),
	}
}

// Run deletes every _acme-challenge record in the configured zones and
// drains the journal. Individual failures are collected, not short-circuited,
// so one stuck record does not shield the rest.
func (c *Cleaner) Run(ctx context.Context) error {
	var errs []error

	journaled, err := c.journal.Records()
	if err != nil {
		errs = append(errs, err)
	}
	for _, r := range journaled {
		if err := c.gateway.DeleteTXT(ctx, r.Zone, r.RecordID); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.journal.Remove(r); err != nil {
			errs = append(errs, err)
		}
	}

	for _, zone := range c.cfg.Certificate.Zones() {
		records, err := c.gateway.ListChallengeRecords(ctx, zone)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		deleted := 0
		for _, r := range records {
			if err := c.gateway.DeleteTXT(ctx, zone, r.ID); err != nil {
				errs = append(errs, err)
				continue
			}
			deleted++
		}
		c.log.Info("zone cleaned", "zone", zone, "deleted", deleted)

		if deleted > 0 {
			if err := c.gateway.RefreshZone(ctx, zone); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}
