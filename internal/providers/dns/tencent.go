package dns

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"
)

type TencentProvider struct {
	client *dnspod.Client
}

func NewTencentProvider(secretID, secretKey string) (*TencentProvider, error) {
	credential := common.NewCredential(secretID, secretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "dnspod.tencentcloudapi.com"
	client, err := dnspod.NewClient(credential, "", cpf)
	if err != nil {
		return nil, fmt.Errorf("create tencent dns client: %w", err)
	}
	return &TencentProvider{client: client}, nil
}

func (p *TencentProvider) Name() string {
	return "tencent"
}

func (p *TencentProvider) ListRecords(ctx context.Context, zone string) ([]Record, error) {
	req := dnspod.NewDescribeRecordListRequest()
	req.Domain = common.StringPtr(zone)

	resp, err := p.client.DescribeRecordListWithContext(ctx, req)
	if err != nil {
		return nil, ClassifyError("list records", err)
	}

	var records []Record
	if resp.Response != nil && resp.Response.RecordList != nil {
		for _, r := range resp.Response.RecordList {
			ttl := 600
			if r.TTL != nil {
				ttl = int(*r.TTL)
			}
			records = append(records, Record{
				ID:    strconv.FormatUint(*r.RecordId, 10),
				Name:  *r.Name,
				Type:  *r.Type,
				Value: *r.Value,
				TTL:   ttl,
			})
		}
	}
	return records, nil
}

func (p *TencentProvider) CreateRecord(ctx context.Context, zone string, record *Record) (string, error) {
	ttl := uint64(record.TTL)
	if ttl == 0 {
		ttl = 600
	}

	req := dnspod.NewCreateRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.SubDomain = common.StringPtr(record.Name)
	req.RecordType = common.StringPtr(record.Type)
	req.RecordLine = common.StringPtr("默认")
	req.Value = common.StringPtr(record.Value)
	req.TTL = common.Uint64Ptr(ttl)

	resp, err := p.client.CreateRecordWithContext(ctx, req)
	if err != nil {
		return "", ClassifyError("create record", err)
	}
	if resp.Response == nil || resp.Response.RecordId == nil {
		return "", ClassifyError("create record", fmt.Errorf("response missing record ID"))
	}
	return strconv.FormatUint(*resp.Response.RecordId, 10), nil
}

func (p *TencentProvider) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	recordIDInt, err := strconv.ParseUint(recordID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record ID %q: %w", recordID, err)
	}

	req := dnspod.NewDeleteRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.RecordId = common.Uint64Ptr(recordIDInt)

	if _, err := p.client.DeleteRecordWithContext(ctx, req); err != nil {
		return ClassifyError("delete record", err)
	}
	return nil
}

// RefreshZone is a no-op: DNSPod serves changes immediately.
func (p *TencentProvider) RefreshZone(ctx context.Context, zone string) error {
	return nil
}
