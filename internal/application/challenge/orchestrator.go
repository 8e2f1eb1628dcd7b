package challenge

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"github.com/lite-lake/infra-certops/internal/domain/retry"
	"github.com/lite-lake/infra-certops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-certops/internal/infrastructure/storage"
	"github.com/lite-lake/infra-certops/internal/providers/ssl"
)

// ACMEClient is the slice of the ACME protocol the orchestrator needs.
// Implemented by ssl.Client, faked in tests.
type ACMEClient interface {
	Register(ctx context.Context) error
	PlaceOrder(ctx context.Context, domains []string) (*ssl.Order, error)
	Authorizations(ctx context.Context, order *ssl.Order) ([]*ssl.Authorization, error)
	DNS01ChallengeRecord(authz *ssl.Authorization) (string, error)
	Answer(ctx context.Context, authz *ssl.Authorization) error
	PollAuthorization(ctx context.Context, authz *ssl.Authorization) (ssl.AuthzStatus, error)
	Finalize(ctx context.Context, order *ssl.Order, csr []byte) ([][]byte, error)
}

// RecordJournal persists provisioned records across a crash. Implemented by
// state.Journal.
type RecordJournal interface {
	Records() ([]entity.ProvisionedRecord, error)
	Append(records ...entity.ProvisionedRecord) error
	Remove(record entity.ProvisionedRecord) error
	Clear() error
}

// binding pairs one pending authorization with the target that carries its
// TXT value. Apex and wildcard bind to the same target.
type binding struct {
	authz  *ssl.Authorization
	target *Target
}

// Orchestrator drives one issuance pass end to end. Once the first record
// is published the cleanup phase is guaranteed on every exit path, including
// context cancellation.
type Orchestrator struct {
	acme     ACMEClient
	gateway  *Gateway
	verifier *Verifier
	journal  RecordJournal
	cfg      *entity.Config
	log      *logger.Logger

	provisioned []entity.ProvisionedRecord
}

func NewOrchestrator(acme ACMEClient, gateway *Gateway, verifier *Verifier, journal RecordJournal, cfg *entity.Config) *Orchestrator {
	return &Orchestrator{
		acme:     acme,
		gateway:  gateway,
		verifier: verifier,
		journal:  journal,
		cfg:      cfg,
		log:      logger.ForRun(newRunID()),
	}
}

func newRunID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Run executes the issuance pipeline and always returns an outcome. The
// returned outcome carries leftover records when cleanup could not finish.
func (o *Orchestrator) Run(ctx context.Context) *RunOutcome {
	outcome := &RunOutcome{}
	domains := o.cfg.Certificate.Domains

	o.preCleanup(ctx)

	// Cleanup must run even when ctx was canceled mid-flight, so it gets a
	// context detached from the run's cancellation.
	defer o.cleanup(context.WithoutCancel(ctx), outcome)

	if err := o.acme.Register(ctx); err != nil {
		return o.fail(outcome, err)
	}

	order, err := o.acme.PlaceOrder(ctx, domains)
	if err != nil {
		return o.fail(outcome, err)
	}
	o.log.Info("order placed", "uri", order.URI, "domains", domains)

	authzs, err := o.acme.Authorizations(ctx, order)
	if err != nil {
		return o.fail(outcome, err)
	}

	targets, bindings, err := o.resolveTargets(domains, authzs)
	if err != nil {
		return o.fail(outcome, err)
	}
	if len(bindings) == 0 {
		o.log.Info("all authorizations already valid")
		return o.finalize(ctx, outcome, order, domains)
	}

	if err := o.publish(ctx, targets); err != nil {
		return o.fail(outcome, err)
	}

	if err := o.confirmPropagation(ctx, targets); err != nil {
		return o.fail(outcome, err)
	}

	if err := o.answer(ctx, bindings); err != nil {
		return o.fail(outcome, err)
	}

	if err := o.pollAuthorizations(ctx, bindings); err != nil {
		return o.fail(outcome, err)
	}

	// The records served their purpose once the authorizations settled;
	// remove them before finalizing. The deferred cleanup then has nothing
	// left to do and only covers the failure paths above.
	o.cleanup(context.WithoutCancel(ctx), outcome)

	return o.finalize(ctx, outcome, order, domains)
}

// preCleanup removes stale challenge records from previous runs: anything
// journaled by a crashed run and any _acme-challenge record still live in
// an implied zone. Best effort, failures never abort the run.
func (o *Orchestrator) preCleanup(ctx context.Context) {
	journaled, err := o.journal.Records()
	if err != nil {
		o.log.Warn("pre-cleanup: reading journal failed", "error", err)
	}
	for _, r := range journaled {
		if err := o.gateway.DeleteTXT(ctx, r.Zone, r.RecordID); err != nil {
			o.log.Warn("pre-cleanup: deleting journaled record failed", "zone", r.Zone, "id", r.RecordID, "error", err)
			continue
		}
		if err := o.journal.Remove(r); err != nil {
			o.log.Warn("pre-cleanup: journal update failed", "error", err)
		}
	}

	for _, zone := range o.cfg.Certificate.Zones() {
		records, err := o.gateway.ListChallengeRecords(ctx, zone)
		if err != nil {
			o.log.Warn("pre-cleanup: listing records failed", "zone", zone, "error", err)
			continue
		}
		deleted := 0
		for _, r := range records {
			if err := o.gateway.DeleteTXT(ctx, zone, r.ID); err != nil {
				o.log.Warn("pre-cleanup: delete failed", "zone", zone, "id", r.ID, "error", err)
				continue
			}
			deleted++
		}
		if deleted > 0 {
			o.log.Info("pre-cleanup: removed stale challenge records", "zone", zone, "count", deleted)
			if err := o.gateway.RefreshZone(ctx, zone); err != nil {
				o.log.Warn("pre-cleanup: zone refresh failed", "zone", zone, "error", err)
			}
		}
	}
}

// resolveTargets maps the request onto challenge targets and binds each
// pending authorization to its target, accumulating the distinct TXT values
// the target must carry. Already-valid authorizations are skipped.
func (o *Orchestrator) resolveTargets(domains []string, authzs []*ssl.Authorization) ([]*Target, []binding, error) {
	targets, err := MapTargets(domains, o.cfg.Certificate.ZoneFor)
	if err != nil {
		return nil, nil, err
	}

	byRecord := make(map[string]*Target, len(targets))
	for _, t := range targets {
		byRecord[t.RecordName] = t
	}

	var bindings []binding
	for _, authz := range authzs {
		if !authz.Pending() {
			o.log.Debug("authorization already settled", "domain", authz.Domain, "status", authz.Status)
			continue
		}

		recordName := domainerr.ChallengePrefix + "." + authz.Domain
		target, ok := byRecord[recordName]
		if !ok {
			return nil, nil, fmt.Errorf("%w: authorization %s matches no requested domain", domainerr.ErrOrderFailed, authz.Domain)
		}

		value, err := o.acme.DNS01ChallengeRecord(authz)
		if err != nil {
			return nil, nil, err
		}
		target.AddValue(value)
		bindings = append(bindings, binding{authz: authz, target: target})
	}

	// Targets with no pending authorization need no record.
	var active []*Target
	for _, t := range targets {
		if len(t.Values) > 0 {
			active = append(active, t)
		}
	}
	return active, bindings, nil
}

// publish creates one TXT record per (target, value) pair and journals each
// provisioned record before moving on. A failure here still leaves every
// already-created record tracked for cleanup.
func (o *Orchestrator) publish(ctx context.Context, targets []*Target) error {
	zones := make(map[string]bool)
	for _, t := range targets {
		for _, value := range t.Values {
			id, err := o.gateway.CreateTXT(ctx, t.Zone, t.SubName, value)
			if err != nil {
				return err
			}
			record := entity.ProvisionedRecord{
				Zone:     t.Zone,
				RecordID: id,
				Name:     t.SubName,
				Value:    value,
			}
			o.provisioned = append(o.provisioned, record)
			if err := o.journal.Append(record); err != nil {
				o.log.Warn("journaling provisioned record failed", "zone", t.Zone, "id", id, "error", err)
			}
		}
		zones[t.Zone] = true
	}

	for zone := range zones {
		if err := o.gateway.RefreshZone(ctx, zone); err != nil {
			o.log.Warn("zone refresh failed after publish", "zone", zone, "error", err)
		}
	}
	return nil
}

// confirmPropagation waits for each target's values to become visible on
// public resolvers. On timeout the configured policy decides: proceed lets
// the ACME server's own validation retries absorb the lag, abort fails the
// run (cleanup still happens).
func (o *Orchestrator) confirmPropagation(ctx context.Context, targets []*Target) error {
	prop := &o.cfg.Propagation
	for _, t := range targets {
		for _, value := range t.Values {
			visible, err := o.verifier.Wait(ctx, t.RecordName, value, prop.Wait(), prop.Interval())
			if err != nil {
				if errors.Is(err, domainerr.ErrPropagationUnavailable) {
					o.log.Warn("propagation check unavailable, proceeding", "record", t.RecordName, "error", err)
					continue
				}
				return err
			}
			if !visible {
				if prop.Policy() == entity.TimeoutAbort {
					return fmt.Errorf("%w: %s not visible within %s", domainerr.ErrChallengeValidationFailed, t.RecordName, prop.Wait())
				}
				o.log.Warn("proceeding without local propagation confirmation", "record", t.RecordName)
			}
		}
	}
	return nil
}

// answer notifies the CA per authorization. Every record of a binding's
// target was acknowledged by the provider before this point.
func (o *Orchestrator) answer(ctx context.Context, bindings []binding) error {
	for _, b := range bindings {
		if err := o.acme.Answer(ctx, b.authz); err != nil {
			return err
		}
		o.log.Info("challenge answered", "domain", b.authz.Domain, "wildcard", b.authz.Wildcard)
	}
	return nil
}

var errAuthzPending = errors.New("authorization still pending")

// pollAuthorizations waits for every authorization to settle. Any invalid
// authorization fails the whole order, carrying the per-domain reasons the
// server reported.
func (o *Orchestrator) pollAuthorizations(ctx context.Context, bindings []binding) error {
	var failures []string

	for _, b := range bindings {
		status, err := retry.DoWithResult(ctx, func() (ssl.AuthzStatus, error) {
			s, err := o.acme.PollAuthorization(ctx, b.authz)
			if err != nil {
				return s, err
			}
			if !s.Settled() {
				return s, errAuthzPending
			}
			return s, nil
		},
			retry.WithMaxAttempts(domainerr.DefaultAuthPollAttempts),
			retry.WithInitialDelay(domainerr.DefaultAuthPollInitial),
			retry.WithMaxDelay(domainerr.DefaultAuthPollMax),
			retry.WithIsRetryable(func(err error) bool {
				return errors.Is(err, errAuthzPending) || domainerr.Retryable(err)
			}),
		)
		if err != nil {
			return domainerr.WrapEntity("authorization", b.authz.Domain, err)
		}
		if status.Invalid() {
			failures = append(failures, fmt.Sprintf("%s: %s", requestedName(b.authz), status.Problem))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", domainerr.ErrChallengeValidationFailed, strings.Join(failures, "; "))
	}
	return nil
}

// cleanup deletes every record this run provisioned, refreshes the touched
// zones, and drops deleted records from the journal. Deletion failures are
// attached to the outcome as leftovers without changing the primary result.
func (o *Orchestrator) cleanup(ctx context.Context, outcome *RunOutcome) {
	if len(o.provisioned) == 0 {
		return
	}

	zones := make(map[string]bool)
	for _, r := range o.provisioned {
		if err := o.gateway.DeleteTXT(ctx, r.Zone, r.RecordID); err != nil {
			o.log.Error("cleanup: delete failed", "zone", r.Zone, "id", r.RecordID, "error", err)
			outcome.Leftover = append(outcome.Leftover, r)
			continue
		}
		zones[r.Zone] = true
		if err := o.journal.Remove(r); err != nil {
			o.log.Warn("cleanup: journal update failed", "error", err)
		}
	}

	for zone := range zones {
		if err := o.gateway.RefreshZone(ctx, zone); err != nil {
			o.log.Warn("cleanup: zone refresh failed", "zone", zone, "error", err)
		}
	}

	if outcome.CleanupIncomplete() {
		o.log.Error("cleanup incomplete, manual intervention needed", "leftover", len(outcome.Leftover))
	}
	o.provisioned = nil
}

// finalize submits the CSR, downloads the chain and writes the artifacts.
func (o *Orchestrator) finalize(ctx context.Context, outcome *RunOutcome, order *ssl.Order, domains []string) *RunOutcome {
	key, err := ssl.GenerateCertificateKey()
	if err != nil {
		return o.fail(outcome, err)
	}

	csr, err := ssl.CreateCSR(domains, key)
	if err != nil {
		return o.fail(outcome, err)
	}

	der, err := o.acme.Finalize(ctx, order, csr)
	if err != nil {
		return o.fail(outcome, err)
	}

	chainPEM := ssl.EncodeChainPEM(der)
	keyPEM, err := ssl.EncodeKeyPEM(key)
	if err != nil {
		return o.fail(outcome, err)
	}

	notAfter, err := ssl.LeafExpiry(der)
	if err != nil {
		o.log.Warn("parsing leaf certificate failed", "error", err)
	}

	cert := &o.cfg.Certificate
	if err := storage.WriteCertificate(cert.CertPath, cert.KeyPath, chainPEM, keyPEM); err != nil {
		return o.fail(outcome, err)
	}

	outcome.Issued = true
	outcome.ChainPEM = chainPEM
	outcome.KeyPEM = keyPEM
	outcome.NotAfter = notAfter
	o.log.Info("certificate issued", "cert", cert.CertPath, "not_after", notAfter)
	return outcome
}

func (o *Orchestrator) fail(outcome *RunOutcome, err error) *RunOutcome {
	outcome.Issued = false
	outcome.Reason = err
	o.log.Error("run failed", "error", err)
	return outcome
}

// requestedName reconstructs the operator-facing form of an authorization's
// identifier.
func requestedName(authz *ssl.Authorization) string {
	if authz.Wildcard {
		return "*." + authz.Domain
	}
	return authz.Domain
}
