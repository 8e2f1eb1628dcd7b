package dns

import (
	"fmt"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"github.com/lite-lake/infra-certops/internal/domain/valueobject"
)

type CreatorFunc func(cfg *entity.DNSProvider, secrets map[string]string) (Provider, error)

type Factory struct {
	creators map[string]CreatorFunc
}

func NewFactory() *Factory {
	return &Factory{
		creators: map[string]CreatorFunc{
			string(entity.DNSProviderOVH):        createOVH,
			string(entity.DNSProviderCloudflare): createCloudflare,
			string(entity.DNSProviderAliyun):     createAliyun,
			string(entity.DNSProviderTencent):    createTencent,
		},
	}
}

func (f *Factory) Create(cfg *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	creator, ok := f.creators[string(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported provider type %q", domainerr.ErrConfigValidateFail, cfg.Type)
	}
	return creator(cfg, secrets)
}

func (f *Factory) Register(providerType string, creator CreatorFunc) {
	f.creators[providerType] = creator
}

func resolveCredential(creds map[string]valueobject.SecretRef, key string, secrets map[string]string) (string, error) {
	ref, ok := creds[key]
	if !ok {
		return "", fmt.Errorf("%w: credential %s", domainerr.ErrRequired, key)
	}
	value, err := ref.Resolve(secrets)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", key, err)
	}
	return value, nil
}

func createOVH(cfg *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	endpoint, err := resolveCredential(cfg.Credentials, "endpoint", secrets)
	if err != nil {
		return nil, err
	}
	appKey, err := resolveCredential(cfg.Credentials, "application_key", secrets)
	if err != nil {
		return nil, err
	}
	appSecret, err := resolveCredential(cfg.Credentials, "application_secret", secrets)
	if err != nil {
		return nil, err
	}
	consumerKey, err := resolveCredential(cfg.Credentials, "consumer_key", secrets)
	if err != nil {
		return nil, err
	}
	return NewOVHProvider(endpoint, appKey, appSecret, consumerKey)
}

func createCloudflare(cfg *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	apiToken, err := resolveCredential(cfg.Credentials, "api_token", secrets)
	if err != nil {
		return nil, err
	}
	return NewCloudflareProvider(apiToken), nil
}

func createAliyun(cfg *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	accessKeyID, err := resolveCredential(cfg.Credentials, "access_key_id", secrets)
	if err != nil {
		return nil, err
	}
	accessKeySecret, err := resolveCredential(cfg.Credentials, "access_key_secret", secrets)
	if err != nil {
		return nil, err
	}
	return NewAliyunProvider(accessKeyID, accessKeySecret)
}

func createTencent(cfg *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	secretID, err := resolveCredential(cfg.Credentials, "secret_id", secrets)
	if err != nil {
		return nil, err
	}
	secretKey, err := resolveCredential(cfg.Credentials, "secret_key", secrets)
	if err != nil {
		return nil, err
	}
	return NewTencentProvider(secretID, secretKey)
}
