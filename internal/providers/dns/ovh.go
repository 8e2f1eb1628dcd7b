package dns

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ovh/go-ovh/ovh"
)

// OVHProvider drives the OVH zone API. Records are manipulated through
// /domain/zone/{zone}/record and made live with an explicit zone refresh.
type OVHProvider struct {
	client *ovh.Client
}

type ovhRecord struct {
	ID        int64  `json:"id"`
	FieldType string `json:"fieldType"`
	SubDomain string `json:"subDomain"`
	Target    string `json:"target"`
	TTL       int    `json:"ttl"`
	Zone      string `json:"zone"`
}

type ovhRecordCreate struct {
	FieldType string `json:"fieldType"`
	SubDomain string `json:"subDomain"`
	Target    string `json:"target"`
	TTL       int    `json:"ttl"`
}

func NewOVHProvider(endpoint, appKey, appSecret, consumerKey string) (*OVHProvider, error) {
	client, err := ovh.NewClient(endpoint, appKey, appSecret, consumerKey)
	if err != nil {
		return nil, fmt.Errorf("create ovh client: %w", err)
	}
	return &OVHProvider{client: client}, nil
}

func (p *OVHProvider) Name() string {
	return "ovh"
}

func (p *OVHProvider) ListRecords(ctx context.Context, zone string) ([]Record, error) {
	var ids []int64
	path := fmt.Sprintf("/domain/zone/%s/record", url.PathEscape(zone))
	if err := p.client.GetWithContext(ctx, path, &ids); err != nil {
		return nil, ClassifyError("list records", err)
	}

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		var raw ovhRecord
		recordPath := fmt.Sprintf("%s/%d", path, id)
		if err := p.client.GetWithContext(ctx, recordPath, &raw); err != nil {
			return nil, ClassifyError("get record", err)
		}
		records = append(records, Record{
			ID:    fmt.Sprintf("%d", raw.ID),
			Name:  raw.SubDomain,
			Type:  raw.FieldType,
			Value: raw.Target,
			TTL:   raw.TTL,
		})
	}
	return records, nil
}

func (p *OVHProvider) CreateRecord(ctx context.Context, zone string, record *Record) (string, error) {
	body := ovhRecordCreate{
		FieldType: record.Type,
		SubDomain: record.Name,
		Target:    record.Value,
		TTL:       record.TTL,
	}

	var created ovhRecord
	path := fmt.Sprintf("/domain/zone/%s/record", url.PathEscape(zone))
	if err := p.client.PostWithContext(ctx, path, body, &created); err != nil {
		return "", ClassifyError("create record", err)
	}
	return fmt.Sprintf("%d", created.ID), nil
}

func (p *OVHProvider) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	path := fmt.Sprintf("/domain/zone/%s/record/%s", url.PathEscape(zone), url.PathEscape(recordID))
	if err := p.client.DeleteWithContext(ctx, path, nil); err != nil {
		if apiErr, ok := err.(*ovh.APIError); ok && apiErr.Code == 404 {
			return nil
		}
		return ClassifyError("delete record", err)
	}
	return nil
}

func (p *OVHProvider) RefreshZone(ctx context.Context, zone string) error {
	path := fmt.Sprintf("/domain/zone/%s/refresh", url.PathEscape(zone))
	if err := p.client.PostWithContext(ctx, path, nil, nil); err != nil {
		return ClassifyError("refresh zone", err)
	}
	return nil
}
