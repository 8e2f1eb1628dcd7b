package dns

import "context"

// Record is a single resource record inside a managed zone. Name is the
// subdomain part relative to the zone ("@" or "" means the apex).
type Record struct {
	ID    string
	Name  string
	Type  string
	Value string
	TTL   int
}

// Provider is the surface the challenge gateway needs from a DNS host.
// CreateRecord returns the provider-assigned record ID so the caller can
// delete exactly what it created. RefreshZone asks the provider to push the
// zone to its authoritative servers; providers without such a call return nil.
type Provider interface {
	Name() string
	ListRecords(ctx context.Context, zone string) ([]Record, error)
	CreateRecord(ctx context.Context, zone string, record *Record) (string, error)
	DeleteRecord(ctx context.Context, zone string, recordID string) error
	RefreshZone(ctx context.Context, zone string) error
}
