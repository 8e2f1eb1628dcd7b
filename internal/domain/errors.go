package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDomainFormat = errors.New("invalid domain format")
	ErrInvalidTTL          = errors.New("invalid TTL")
	ErrInvalidType         = errors.New("invalid type")
	ErrEmptyValue          = errors.New("empty value")
	ErrRequired            = errors.New("required field missing")
	ErrMissingSecret       = errors.New("missing secret reference")
	ErrConfigNotLoaded     = errors.New("config not loaded")

	ErrAuthentication      = errors.New("provider authentication failed")
	ErrRateLimited         = errors.New("provider rate limited")
	ErrProviderTransient   = errors.New("transient provider error")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrRecordNotFound      = errors.New("DNS record not found")
	ErrZoneNotFound        = errors.New("DNS zone not found")

	ErrPropagationUnavailable    = errors.New("propagation check unavailable")
	ErrChallengeValidationFailed = errors.New("challenge validation failed")
	ErrCleanupIncomplete         = errors.New("cleanup incomplete")

	ErrOrderFailed      = errors.New("ACME order failed")
	ErrCertObtainFailed = errors.New("certificate obtain failed")
	ErrCertInvalid      = errors.New("certificate invalid")

	ErrConfigReadFailed   = errors.New("config read failed")
	ErrConfigParseFailed  = errors.New("config parse failed")
	ErrConfigValidateFail = errors.New("config validation failed")

	ErrStateReadFailed  = errors.New("state read failed")
	ErrStateWriteFailed = errors.New("state write failed")

	ErrSSHConnectFailed = errors.New("SSH connection failed")
	ErrSSHFileTransfer  = errors.New("SSH file transfer failed")
)

func RequiredField(field string) error {
	return fmt.Errorf("%w: %s", ErrRequired, field)
}

func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func WrapEntity(entity, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s[%s]: %w", entity, name, err)
}

// Retryable reports whether a provider error is worth another attempt.
// Authentication failures are terminal; rate limits and transient
// failures are not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthentication) {
		return false
	}
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderTransient)
}
