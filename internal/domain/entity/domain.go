package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lite-lake/infra-certops/internal/domain"
)

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidateDomainName accepts hostnames and single-level wildcards
// ("*.example.com"). A wildcard anywhere but the leftmost label is rejected.
func ValidateDomainName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", domain.ErrInvalidDomainFormat)
	}
	bare := strings.TrimPrefix(name, "*.")
	if strings.Contains(bare, "*") {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDomainFormat, name)
	}
	if !strings.Contains(bare, ".") {
		return fmt.Errorf("%w: %s is not a fully qualified name", domain.ErrInvalidDomainFormat, name)
	}
	if !hostnameRegex.MatchString(bare) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDomainFormat, name)
	}
	return nil
}

// BareName strips the wildcard label, mapping "*.example.com" and
// "example.com" onto the same name.
func BareName(name string) string {
	return strings.TrimPrefix(name, "*.")
}

// RegisteredZone derives the DNS zone a name belongs to. Without an explicit
// override it takes the last two labels, which matches zones purchased
// directly at a registrar ("app.example.com" -> "example.com").
func RegisteredZone(name string) string {
	bare := BareName(name)
	parts := strings.Split(bare, ".")
	if len(parts) <= 2 {
		return bare
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
