package entity

import (
	"fmt"

	"github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/valueobject"
)

type DNSProviderType string

const (
	DNSProviderOVH        DNSProviderType = "ovh"
	DNSProviderCloudflare DNSProviderType = "cloudflare"
	DNSProviderAliyun     DNSProviderType = "aliyun"
	DNSProviderTencent    DNSProviderType = "tencent"
)

type DNSProvider struct {
	Type        DNSProviderType                  `yaml:"type"`
	Credentials map[string]valueobject.SecretRef `yaml:"credentials"`
}

func (p *DNSProvider) Validate() error {
	switch p.Type {
	case DNSProviderOVH, DNSProviderCloudflare, DNSProviderAliyun, DNSProviderTencent:
	case "":
		return domain.RequiredField("dns provider type")
	default:
		return fmt.Errorf("%w: dns provider %q", domain.ErrConfigValidateFail, p.Type)
	}
	if len(p.Credentials) == 0 {
		return domain.RequiredField("dns provider credentials")
	}
	for key, ref := range p.Credentials {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("credential %s: %w", key, err)
		}
	}
	return nil
}
