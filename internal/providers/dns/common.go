package dns

import (
	"fmt"
	"net"
	"strings"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
)

// FullName joins a subdomain with its zone. "@" and "" both mean the apex.
func FullName(subDomain, zone string) string {
	if subDomain == "@" || subDomain == "" {
		return zone
	}
	return subDomain + "." + zone
}

// SubName converts a fully qualified name back to a subdomain relative to
// the zone, "@" for the apex.
func SubName(fullName, zone string) string {
	if fullName == zone {
		return "@"
	}
	suffix := "." + zone
	if strings.HasSuffix(fullName, suffix) {
		return strings.TrimSuffix(fullName, suffix)
	}
	return fullName
}

var (
	notFoundPatterns = []string{
		"not found",
		"notfound",
		"does not exist",
		"no such record",
		"noexist",
		"404",
	}
	authPatterns = []string{
		"unauthorized",
		"authentication",
		"invalid credentials",
		"invalid signature",
		"forbidden",
		"access denied",
		"401",
		"403",
	}
	rateLimitPatterns = []string{
		"rate limit",
		"too many requests",
		"429",
		"throttl",
	}
	transientPatterns = []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
		"service unavailable",
		"internal server error",
		"bad gateway",
		"gateway timeout",
	}
)

func domainZoneNotFound(zone string) error {
	return fmt.Errorf("%w: %s", domainerr.ErrZoneNotFound, zone)
}

// ClassifyError maps a raw provider error onto the domain taxonomy so
// callers can decide retry-vs-abort with errors.Is instead of string
// matching. Unrecognized errors pass through unchanged.
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return fmt.Errorf("%s: %w: %v", op, domainerr.ErrProviderTransient, err)
	}

	msg := strings.ToLower(err.Error())
	for _, p := range notFoundPatterns {
		if strings.Contains(msg, p) {
			return fmt.Errorf("%s: %w: %v", op, domainerr.ErrRecordNotFound, err)
		}
	}
	for _, p := range authPatterns {
		if strings.Contains(msg, p) {
			return fmt.Errorf("%s: %w: %v", op, domainerr.ErrAuthentication, err)
		}
	}
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return fmt.Errorf("%s: %w: %v", op, domainerr.ErrRateLimited, err)
		}
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return fmt.Errorf("%s: %w: %v", op, domainerr.ErrProviderTransient, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
