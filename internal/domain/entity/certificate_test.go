package entity

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lite-lake/infra-certops/internal/domain"
)

func TestCertificate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cert    Certificate
		wantErr error
	}{
		{
			name:    "missing domains",
			cert:    Certificate{CertPath: "a.crt", KeyPath: "a.key"},
			wantErr: domain.ErrRequired,
		},
		{
			name:    "invalid domain",
			cert:    Certificate{Domains: []string{"not_a_domain"}, CertPath: "a.crt", KeyPath: "a.key"},
			wantErr: domain.ErrInvalidDomainFormat,
		},
		{
			name:    "duplicate domain",
			cert:    Certificate{Domains: []string{"example.com", "example.com"}, CertPath: "a.crt", KeyPath: "a.key"},
			wantErr: domain.ErrConfigValidateFail,
		},
		{
			name:    "missing cert path",
			cert:    Certificate{Domains: []string{"example.com"}, KeyPath: "a.key"},
			wantErr: domain.ErrRequired,
		},
		{
			name:    "missing key path",
			cert:    Certificate{Domains: []string{"example.com"}, CertPath: "a.crt"},
			wantErr: domain.ErrRequired,
		},
		{
			name:    "valid apex plus wildcard",
			cert:    Certificate{Domains: []string{"example.com", "*.example.com"}, CertPath: "a.crt", KeyPath: "a.key"},
			wantErr: nil,
		},
		{
			name:    "valid with zone override",
			cert:    Certificate{Domains: []string{"*.dev.example.com"}, Zone: "dev.example.com", CertPath: "a.crt", KeyPath: "a.key"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cert.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestCertificate_Zones(t *testing.T) {
	cert := Certificate{Domains: []string{"example.com", "*.example.com", "other.net"}}
	want := []string{"example.com", "other.net"}
	if got := cert.Zones(); !reflect.DeepEqual(got, want) {
		t.Errorf("Zones() = %v, want %v", got, want)
	}
}

func TestCertificate_ZoneFor_Override(t *testing.T) {
	cert := Certificate{Domains: []string{"*.dev.example.com"}, Zone: "dev.example.com"}
	if got := cert.ZoneFor("*.dev.example.com"); got != "dev.example.com" {
		t.Errorf("ZoneFor() = %q, want dev.example.com", got)
	}
}
