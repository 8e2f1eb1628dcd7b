package ssl

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"time"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"golang.org/x/crypto/acme"
)

// Client wraps x/crypto/acme for the dns-01 flow. It deliberately does not
// touch DNS itself; the orchestrator owns record lifecycle so cleanup can be
// guaranteed on every exit path.
type Client struct {
	client       *acme.Client
	directoryURL string
	email        string
	eab          *acme.ExternalAccountBinding
}

// NewClient builds an ACME client for the configured CA. A fresh account key
// is generated per run; CAs treat re-registration of the same contact as a
// cheap account lookup.
func NewClient(cfg *entity.ACME, secrets map[string]string) (*Client, error) {
	directoryURL, err := DirectoryURL(cfg)
	if err != nil {
		return nil, err
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, domainerr.WrapOp("generate account key", err)
	}

	c := &Client{
		client: &acme.Client{
			Key:          key,
			DirectoryURL: directoryURL,
		},
		directoryURL: directoryURL,
		email:        cfg.Email,
	}

	if cfg.EABKid != "" && cfg.EABHmacKey != nil {
		hmacKey, err := cfg.EABHmacKey.Resolve(secrets)
		if err != nil {
			return nil, domainerr.WrapOp("resolve EAB hmac key", err)
		}
		keyBytes, err := base64.RawURLEncoding.DecodeString(hmacKey)
		if err != nil {
			return nil, domainerr.WrapOp("decode EAB hmac key", err)
		}
		c.eab = &acme.ExternalAccountBinding{
			KID: cfg.EABKid,
			Key: keyBytes,
		}
	}

	return c, nil
}

// Register creates or looks up the account at the CA. An existing account
// (409) is not an error.
func (c *Client) Register(ctx context.Context) error {
	account := &acme.Account{
		Contact:                []string{"mailto:" + c.email},
		ExternalAccountBinding: c.eab,
	}

	_, err := c.client.Register(ctx, account, acme.AcceptTOS)
	if err != nil {
		if ae, ok := err.(*acme.Error); ok && ae.StatusCode == 409 {
			return nil
		}
		return domainerr.WrapOp("register account", classifyACMEError(err))
	}
	return nil
}

func (c *Client) PlaceOrder(ctx context.Context, domains []string) (*Order, error) {
	order, err := c.client.AuthorizeOrder(ctx, acme.DomainIDs(domains...))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerr.ErrOrderFailed, classifyACMEError(err))
	}
	return &Order{
		URI:       order.URI,
		AuthzURLs: order.AuthzURLs,
		raw:       order,
	}, nil
}

// Authorizations fetches every authorization of the order and picks its
// dns-01 challenge. An authorization without a dns-01 challenge fails the
// order; this tool has no other validation method.
func (c *Client) Authorizations(ctx context.Context, order *Order) ([]*Authorization, error) {
	authzs := make([]*Authorization, 0, len(order.AuthzURLs))
	for _, authzURL := range order.AuthzURLs {
		raw, err := c.client.GetAuthorization(ctx, authzURL)
		if err != nil {
			return nil, domainerr.WrapOp("get authorization", classifyACMEError(err))
		}

		authz := &Authorization{
			URL:      authzURL,
			Domain:   raw.Identifier.Value,
			Wildcard: raw.Wildcard,
			Status:   raw.Status,
		}

		if raw.Status == acme.StatusPending {
			var challenge *acme.Challenge
			for _, ch := range raw.Challenges {
				if ch.Type == "dns-01" {
					challenge = ch
					break
				}
			}
			if challenge == nil {
				return nil, domainerr.WrapEntity("authorization", raw.Identifier.Value,
					fmt.Errorf("%w: no dns-01 challenge offered", domainerr.ErrOrderFailed))
			}
			authz.Token = challenge.Token
			authz.ChallengeURI = challenge.URI
		}

		authzs = append(authzs, authz)
	}
	return authzs, nil
}

// DNS01ChallengeRecord returns the TXT value to publish for an
// authorization: base64url(sha256(keyAuthorization)).
func (c *Client) DNS01ChallengeRecord(authz *Authorization) (string, error) {
	value, err := c.client.DNS01ChallengeRecord(authz.Token)
	if err != nil {
		return "", domainerr.WrapOp("compute dns-01 record", err)
	}
	return value, nil
}

// Answer tells the CA the challenge record is in place.
func (c *Client) Answer(ctx context.Context, authz *Authorization) error {
	_, err := c.client.Accept(ctx, &acme.Challenge{
		URI:   authz.ChallengeURI,
		Token: authz.Token,
		Type:  "dns-01",
	})
	if err != nil {
		return domainerr.WrapEntity("authorization", authz.Domain,
			domainerr.WrapOp("answer challenge", classifyACMEError(err)))
	}
	return nil
}

// PollAuthorization fetches the authorization's current status once. The
// caller drives the retry loop.
func (c *Client) PollAuthorization(ctx context.Context, authz *Authorization) (AuthzStatus, error) {
	raw, err := c.client.GetAuthorization(ctx, authz.URL)
	if err != nil {
		return AuthzStatus{}, domainerr.WrapOp("poll authorization", classifyACMEError(err))
	}

	status := AuthzStatus{Status: raw.Status}
	if raw.Status == acme.StatusInvalid {
		for _, ch := range raw.Challenges {
			if ch.Type == "dns-01" && ch.Error != nil {
				status.Problem = ch.Error.Error()
				break
			}
		}
		if status.Problem == "" {
			status.Problem = "authorization invalid"
		}
	}
	return status, nil
}

// Finalize submits the CSR and downloads the issued chain as DER blocks.
func (c *Client) Finalize(ctx context.Context, order *Order, csr []byte) ([][]byte, error) {
	if _, err := c.client.WaitOrder(ctx, order.URI); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerr.ErrCertObtainFailed, classifyACMEError(err))
	}

	der, _, err := c.client.CreateOrderCert(ctx, order.raw.FinalizeURL, csr, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerr.ErrCertObtainFailed, classifyACMEError(err))
	}
	return der, nil
}

func classifyACMEError(err error) error {
	if ae, ok := err.(*acme.Error); ok {
		switch {
		case ae.StatusCode == 401 || ae.StatusCode == 403:
			return fmt.Errorf("%w: %v", domainerr.ErrAuthentication, err)
		case ae.StatusCode == 429:
			return fmt.Errorf("%w: %v", domainerr.ErrRateLimited, err)
		case ae.StatusCode >= 500:
			return fmt.Errorf("%w: %v", domainerr.ErrProviderTransient, err)
		}
	}
	return err
}

// GenerateCertificateKey creates the key pair the certificate is issued for.
func GenerateCertificateKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, domainerr.WrapOp("generate certificate key", err)
	}
	return key, nil
}

// CreateCSR builds a certificate request covering all requested domains.
func CreateCSR(domains []string, key crypto.Signer) ([]byte, error) {
	template := &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: domains[0]},
		DNSNames: domains,
	}
	csr, err := x509.CreateCertificateRequest(rand.Reader, template, key)
	if err != nil {
		return nil, domainerr.WrapOp("create CSR", err)
	}
	return csr, nil
}

// EncodeChainPEM renders the DER chain as concatenated PEM blocks, leaf
// first.
func EncodeChainPEM(der [][]byte) []byte {
	var buf []byte
	for _, b := range der {
		buf = append(buf, pem.EncodeToMemory(&pem.Block{
			Type:  "CERTIFICATE",
			Bytes: b,
		})...)
	}
	return buf
}

// EncodeKeyPEM renders the certificate key in SEC 1 form.
func EncodeKeyPEM(key *ecdsa.PrivateKey) ([]byte, error) {
	b, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, domainerr.WrapOp("encode private key", err)
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: b,
	}), nil
}

// LeafExpiry parses the first DER block and returns its NotAfter.
func LeafExpiry(der [][]byte) (time.Time, error) {
	if len(der) == 0 {
		return time.Time{}, fmt.Errorf("%w: empty chain", domainerr.ErrCertInvalid)
	}
	cert, err := x509.ParseCertificate(der[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domainerr.ErrCertInvalid, err)
	}
	return cert.NotAfter, nil
}
