package ssl

import "golang.org/x/crypto/acme"

// Order is an in-flight ACME order.
type Order struct {
	URI       string
	AuthzURLs []string
	raw       *acme.Order
}

// Authorization is one identifier's dns-01 authorization. Domain is the bare
// identifier value; Wildcard marks an authorization created for a wildcard
// domain (both share the identifier, the server flags the wildcard one).
type Authorization struct {
	URL          string
	Domain       string
	Wildcard     bool
	Status       string
	Token        string
	ChallengeURI string
}

// Pending reports whether the authorization still needs its challenge
// answered. Authorizations the account already validated come back valid
// and are skipped.
func (a *Authorization) Pending() bool {
	return a.Status == acme.StatusPending
}

// AuthzStatus is one poll result for an authorization.
type AuthzStatus struct {
	Status  string
	Problem string
}

func (s AuthzStatus) Valid() bool   { return s.Status == acme.StatusValid }
func (s AuthzStatus) Invalid() bool { return s.Status == acme.StatusInvalid }
func (s AuthzStatus) Settled() bool { return s.Valid() || s.Invalid() }
