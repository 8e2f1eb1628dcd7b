package challenge

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	dnsprovider "github.com/lite-lake/infra-certops/internal/providers/dns"
	"github.com/lite-lake/infra-certops/internal/providers/ssl"
)

// fakeDNSProvider keeps records in memory and appends to a shared event log
// so tests can assert ordering across the provider and the ACME fake.
type fakeDNSProvider struct {
	mu      sync.Mutex
	records map[string]map[string]dnsprovider.Record
	nextID  int

	createErr error
	deleteErr error

	refreshes map[string]int
	events    *[]string
}

func newFakeDNSProvider(events *[]string) *fakeDNSProvider {
	return &fakeDNSProvider{
		records:   make(map[string]map[string]dnsprovider.Record),
		refreshes: make(map[string]int),
		events:    events,
	}
}

func (f *fakeDNSProvider) logEvent(format string, args ...any) {
	if f.events != nil {
		*f.events = append(*f.events, fmt.Sprintf(format, args...))
	}
}

func (f *fakeDNSProvider) Name() string { return "fake" }

func (f *fakeDNSProvider) ListRecords(ctx context.Context, zone string) ([]dnsprovider.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dnsprovider.Record
	for _, r := range f.records[zone] {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeDNSProvider) CreateRecord(ctx context.Context, zone string, record *dnsprovider.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := strconv.Itoa(f.nextID)
	if f.records[zone] == nil {
		f.records[zone] = make(map[string]dnsprovider.Record)
	}
	stored := *record
	stored.ID = id
	f.records[zone][id] = stored
	f.logEvent("create %s %s", record.Name, record.Value)
	return id, nil
}

func (f *fakeDNSProvider) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.records[zone][recordID]; !ok {
		return fmt.Errorf("%w: %s", domainerr.ErrRecordNotFound, recordID)
	}
	delete(f.records[zone], recordID)
	f.logEvent("delete %s", recordID)
	return nil
}

func (f *fakeDNSProvider) RefreshZone(ctx context.Context, zone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes[zone]++
	return nil
}

func (f *fakeDNSProvider) liveRecords(zone string) []dnsprovider.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dnsprovider.Record
	for _, r := range f.records[zone] {
		out = append(out, r)
	}
	return out
}

func (f *fakeDNSProvider) seed(zone string, record dnsprovider.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[zone] == nil {
		f.records[zone] = make(map[string]dnsprovider.Record)
	}
	f.records[zone][record.ID] = record
}

// fakeACME scripts the CA side. Authorization statuses after Answer come
// from pollStatuses, keyed by requested name.
type fakeACME struct {
	authzs       []*ssl.Authorization
	pollStatuses map[string]ssl.AuthzStatus

	registerErr error
	orderErr    error
	finalizeErr error

	answered []string
	events   *[]string
}

func (f *fakeACME) logEvent(format string, args ...any) {
	if f.events != nil {
		*f.events = append(*f.events, fmt.Sprintf(format, args...))
	}
}

func (f *fakeACME) Register(ctx context.Context) error { return f.registerErr }

func (f *fakeACME) PlaceOrder(ctx context.Context, domains []string) (*ssl.Order, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &ssl.Order{URI: "https://ca.test/order/1"}, nil
}

func (f *fakeACME) Authorizations(ctx context.Context, order *ssl.Order) ([]*ssl.Authorization, error) {
	return f.authzs, nil
}

func (f *fakeACME) DNS01ChallengeRecord(authz *ssl.Authorization) (string, error) {
	return "digest-" + requestedName(authz), nil
}

func (f *fakeACME) Answer(ctx context.Context, authz *ssl.Authorization) error {
	name := requestedName(authz)
	f.answered = append(f.answered, name)
	f.logEvent("answer %s", name)
	return nil
}

func (f *fakeACME) PollAuthorization(ctx context.Context, authz *ssl.Authorization) (ssl.AuthzStatus, error) {
	status, ok := f.pollStatuses[requestedName(authz)]
	if !ok {
		return ssl.AuthzStatus{Status: "valid"}, nil
	}
	return status, nil
}

func (f *fakeACME) Finalize(ctx context.Context, order *ssl.Order, csr []byte) ([][]byte, error) {
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	f.logEvent("finalize")
	return [][]byte{[]byte("leaf der"), []byte("issuer der")}, nil
}

// fakeJournal is an in-memory RecordJournal.
type fakeJournal struct {
	mu      sync.Mutex
	records []entity.ProvisionedRecord
}

func (j *fakeJournal) Records() ([]entity.ProvisionedRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]entity.ProvisionedRecord, len(j.records))
	copy(out, j.records)
	return out, nil
}

func (j *fakeJournal) Append(records ...entity.ProvisionedRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, records...)
	return nil
}

func (j *fakeJournal) Remove(record entity.ProvisionedRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	kept := j.records[:0]
	for _, r := range j.records {
		if r.Key() != record.Key() {
			kept = append(kept, r)
		}
	}
	j.records = kept
	return nil
}

func (j *fakeJournal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = nil
	return nil
}

func pendingAuthz(domain string, wildcard bool) *ssl.Authorization {
	name := domain
	if wildcard {
		name = "wild-" + domain
	}
	return &ssl.Authorization{
		URL:          "https://ca.test/authz/" + name,
		Domain:       domain,
		Wildcard:     wildcard,
		Status:       "pending",
		Token:        "token-" + name,
		ChallengeURI: "https://ca.test/chal/" + name,
	}
}
