package dns

import (
	"context"
	"fmt"

	alidns "github.com/alibabacloud-go/alidns-20150109/v4/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"
)

type AliyunProvider struct {
	client *alidns.Client
}

func NewAliyunProvider(accessKeyID, accessKeySecret string) (*AliyunProvider, error) {
	config := &openapi.Config{
		AccessKeyId:     tea.String(accessKeyID),
		AccessKeySecret: tea.String(accessKeySecret),
	}
	config.Endpoint = tea.String("dns.aliyuncs.com")
	client, err := alidns.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("create aliyun dns client: %w", err)
	}
	return &AliyunProvider{client: client}, nil
}

func (p *AliyunProvider) Name() string {
	return "aliyun"
}

func (p *AliyunProvider) ListRecords(ctx context.Context, zone string) ([]Record, error) {
	req := &alidns.DescribeDomainRecordsRequest{
		DomainName: tea.String(zone),
	}
	resp, err := p.client.DescribeDomainRecords(req)
	if err != nil {
		return nil, ClassifyError("list records", err)
	}

	var records []Record
	if resp.Body != nil && resp.Body.DomainRecords != nil {
		for _, r := range resp.Body.DomainRecords.Record {
			ttl := 600
			if r.TTL != nil {
				ttl = int(*r.TTL)
			}
			records = append(records, Record{
				ID:    tea.StringValue(r.RecordId),
				Name:  tea.StringValue(r.RR),
				Type:  tea.StringValue(r.Type),
				Value: tea.StringValue(r.Value),
				TTL:   ttl,
			})
		}
	}
	return records, nil
}

func (p *AliyunProvider) CreateRecord(ctx context.Context, zone string, record *Record) (string, error) {
	ttl := int64(record.TTL)
	if ttl == 0 {
		ttl = 600
	}

	req := &alidns.AddDomainRecordRequest{
		DomainName: tea.String(zone),
		RR:         tea.String(record.Name),
		Type:       tea.String(record.Type),
		Value:      tea.String(record.Value),
		TTL:        tea.Int64(ttl),
	}

	resp, err := p.client.AddDomainRecord(req)
	if err != nil {
		return "", ClassifyError("create record", err)
	}
	if resp.Body == nil || resp.Body.RecordId == nil {
		return "", ClassifyError("create record", fmt.Errorf("response missing record ID"))
	}
	return tea.StringValue(resp.Body.RecordId), nil
}

func (p *AliyunProvider) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	req := &alidns.DeleteDomainRecordRequest{
		RecordId: tea.String(recordID),
	}

	if _, err := p.client.DeleteDomainRecord(req); err != nil {
		return ClassifyError("delete record", err)
	}
	return nil
}

// RefreshZone is a no-op: Aliyun applies record changes to its authoritative
// servers without a separate push call.
func (p *AliyunProvider) RefreshZone(ctx context.Context, zone string) error {
	return nil
}
