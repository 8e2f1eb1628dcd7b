package challenge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/retry"
	"github.com/lite-lake/infra-certops/internal/infrastructure/logger"
	dnsprovider "github.com/lite-lake/infra-certops/internal/providers/dns"
)

// Gateway is the only component that talks to the DNS provider. It layers
// idempotent semantics and bounded retries on top of the raw provider
// operations; callers see terminal success or a classified failure, never a
// mid-retry state.
type Gateway struct {
	provider dnsprovider.Provider
	log      *logger.Logger
}

func NewGateway(provider dnsprovider.Provider, log *logger.Logger) *Gateway {
	if log == nil {
		log = logger.L()
	}
	return &Gateway{provider: provider, log: log}
}

func (g *Gateway) ProviderName() string {
	return g.provider.Name()
}

// CreateTXT publishes one TXT value under subName in zone and returns the
// provider-assigned record ID. Re-running with the same (subName, value)
// pair returns the existing record's ID instead of creating a duplicate.
func (g *Gateway) CreateTXT(ctx context.Context, zone, subName, value string) (string, error) {
	existing, err := g.listTXT(ctx, zone)
	if err != nil {
		return "", g.exhausted("create txt record", err)
	}
	for _, r := range existing {
		if r.Name == subName && txtValue(r.Value) == value {
			g.log.Debug("txt record already present", "zone", zone, "name", subName, "id", r.ID)
			return r.ID, nil
		}
	}

	record := &dnsprovider.Record{
		Name:  subName,
		Type:  "TXT",
		Value: value,
		TTL:   domainerr.ChallengeTTL,
	}

	id, err := retry.DoWithResult(ctx, func() (string, error) {
		return g.provider.CreateRecord(ctx, zone, record)
	}, retry.WithIsRetryable(domainerr.Retryable))
	if err != nil {
		return "", g.exhausted("create txt record", err)
	}

	g.log.Info("txt record created", "zone", zone, "name", subName, "id", id)
	return id, nil
}

// DeleteTXT removes a record by ID. A record that is already gone counts as
// success and is only logged.
func (g *Gateway) DeleteTXT(ctx context.Context, zone, recordID string) error {
	err := retry.Do(ctx, func() error {
		return g.provider.DeleteRecord(ctx, zone, recordID)
	}, retry.WithIsRetryable(domainerr.Retryable))
	if err != nil {
		if errors.Is(err, domainerr.ErrRecordNotFound) {
			g.log.Debug("txt record already deleted", "zone", zone, "id", recordID)
			return nil
		}
		return g.exhausted("delete txt record", err)
	}

	g.log.Info("txt record deleted", "zone", zone, "id", recordID)
	return nil
}

// RefreshZone asks the provider to push pending zone edits. Invoked after
// every create and after every delete batch.
func (g *Gateway) RefreshZone(ctx context.Context, zone string) error {
	err := retry.Do(ctx, func() error {
		return g.provider.RefreshZone(ctx, zone)
	}, retry.WithIsRetryable(domainerr.Retryable))
	if err != nil {
		return g.exhausted("refresh zone", err)
	}
	return nil
}

// ListChallengeRecords returns every TXT record in the zone whose name is
// _acme-challenge or sits under it.
func (g *Gateway) ListChallengeRecords(ctx context.Context, zone string) ([]dnsprovider.Record, error) {
	records, err := g.listTXT(ctx, zone)
	if err != nil {
		return nil, g.exhausted("list challenge records", err)
	}

	var matched []dnsprovider.Record
	for _, r := range records {
		if r.Name == domainerr.ChallengePrefix || strings.HasPrefix(r.Name, domainerr.ChallengePrefix+".") {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (g *Gateway) listTXT(ctx context.Context, zone string) ([]dnsprovider.Record, error) {
	records, err := retry.DoWithResult(ctx, func() ([]dnsprovider.Record, error) {
		return g.provider.ListRecords(ctx, zone)
	}, retry.WithIsRetryable(domainerr.Retryable))
	if err != nil {
		return nil, err
	}

	var txt []dnsprovider.Record
	for _, r := range records {
		if r.Type == "TXT" {
			txt = append(txt, r)
		}
	}
	return txt, nil
}

// exhausted maps a retry failure onto the error taxonomy: exhausted
// retryable failures surface as ErrProviderUnavailable, everything else
// passes through.
func (g *Gateway) exhausted(op string, err error) error {
	if errors.Is(err, retry.ErrMaxAttemptsExceeded) && domainerr.Retryable(err) {
		return fmt.Errorf("%s: %w: %v", op, domainerr.ErrProviderUnavailable, err)
	}
	return domainerr.WrapOp(op, err)
}

// txtValue strips the quoting some providers wrap around TXT payloads.
func txtValue(raw string) string {
	return strings.Trim(raw, `"`)
}
