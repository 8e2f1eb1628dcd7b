package domain

import "time"

const (
	// _acme-challenge is the record label mandated by RFC 8555 for DNS-01.
	ChallengePrefix = "_acme-challenge"

	// ChallengeTTL is deliberately short so stale validation records
	// fall out of caches quickly.
	ChallengeTTL = 60
)

const (
	DefaultRetryMaxAttempts  = 3
	DefaultRetryInitialDelay = 500 * time.Millisecond
	DefaultRetryMaxDelay     = 30 * time.Second
	DefaultRetryMultiplier   = 2.0
)

const (
	DefaultPropagationWait     = 120 * time.Second
	DefaultPropagationInterval = 5 * time.Second

	DefaultAuthPollAttempts = 18
	DefaultAuthPollInitial  = 2 * time.Second
	DefaultAuthPollMax      = 15 * time.Second
)
