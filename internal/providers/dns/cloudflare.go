package dns

import (
	"context"

	"github.com/cloudflare/cloudflare-go/v2"
	cfdns "github.com/cloudflare/cloudflare-go/v2/dns"
	"github.com/cloudflare/cloudflare-go/v2/option"
	"github.com/cloudflare/cloudflare-go/v2/zones"
)

type CloudflareProvider struct {
	client *cloudflare.Client
}

func NewCloudflareProvider(apiToken string) *CloudflareProvider {
	client := cloudflare.NewClient(
		option.WithAPIToken(apiToken),
	)
	return &CloudflareProvider{client: client}
}

func (p *CloudflareProvider) Name() string {
	return "cloudflare"
}

func (p *CloudflareProvider) getZoneID(ctx context.Context, zone string) (string, error) {
	resp, err := p.client.Zones.List(ctx, zones.ZoneListParams{
		Name: cloudflare.F(zone),
	})
	if err != nil {
		return "", ClassifyError("list zones", err)
	}
	if len(resp.Result) == 0 {
		return "", domainZoneNotFound(zone)
	}
	return resp.Result[0].ID, nil
}

func (p *CloudflareProvider) ListRecords(ctx context.Context, zone string) ([]Record, error) {
	zoneID, err := p.getZoneID(ctx, zone)
	if err != nil {
		return nil, err
	}

	var records []Record
	pager := p.client.DNS.Records.ListAutoPaging(ctx, cfdns.RecordListParams{
		ZoneID: cloudflare.F(zoneID),
	})
	for pager.Next() {
		record := pager.Current()
		content := ""
		if str, ok := record.Content.(string); ok {
			content = str
		}
		records = append(records, Record{
			ID:    record.ID,
			Name:  SubName(record.Name, zone),
			Type:  string(record.Type),
			Value: content,
			TTL:   int(record.TTL),
		})
	}
	if err := pager.Err(); err != nil {
		return nil, ClassifyError("list records", err)
	}
	return records, nil
}

func (p *CloudflareProvider) CreateRecord(ctx context.Context, zone string, record *Record) (string, error) {
	zoneID, err := p.getZoneID(ctx, zone)
	if err != nil {
		return "", err
	}

	ttl := record.TTL
	if ttl == 0 {
		ttl = 1
	}

	params := cfdns.RecordNewParams{
		ZoneID: cloudflare.F(zoneID),
		Record: cfdns.TXTRecordParam{
			Name:    cloudflare.F(FullName(record.Name, zone)),
			Type:    cloudflare.F(cfdns.TXTRecordTypeTXT),
			Content: cloudflare.F(record.Value),
			TTL:     cloudflare.F(cfdns.TTL(ttl)),
		},
	}

	created, err := p.client.DNS.Records.New(ctx, params)
	if err != nil {
		return "", ClassifyError("create record", err)
	}
	return created.ID, nil
}

func (p *CloudflareProvider) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	zoneID, err := p.getZoneID(ctx, zone)
	if err != nil {
		return err
	}

	_, err = p.client.DNS.Records.Delete(ctx, recordID, cfdns.RecordDeleteParams{
		ZoneID: cloudflare.F(zoneID),
	})
	if err != nil {
		return ClassifyError("delete record", err)
	}
	return nil
}

// RefreshZone is a no-op: Cloudflare serves record changes from its edge
// without an explicit push step.
func (p *CloudflareProvider) RefreshZone(ctx context.Context, zone string) error {
	return nil
}
