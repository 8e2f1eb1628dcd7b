package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/lite-lake/infra-certops/internal/domain"
)

type TimeoutPolicy string

const (
	// TimeoutProceed answers the challenges anyway after logging a warning.
	// The ACME server retries validation on its own schedule, so a lagging
	// public resolver does not have to fail the run.
	TimeoutProceed TimeoutPolicy = "proceed"
	// TimeoutAbort fails the run when a record never becomes visible.
	TimeoutAbort TimeoutPolicy = "abort"
)

type Propagation struct {
	WaitSeconds     int           `yaml:"wait_seconds,omitempty"`
	IntervalSeconds int           `yaml:"interval_seconds,omitempty"`
	Resolvers       []string      `yaml:"resolvers,omitempty"`
	OnTimeout       TimeoutPolicy `yaml:"on_timeout,omitempty"`
}

func (p *Propagation) Validate() error {
	if p.WaitSeconds < 0 {
		return fmt.Errorf("%w: wait_seconds must be non-negative", domain.ErrConfigValidateFail)
	}
	if p.IntervalSeconds < 0 {
		return fmt.Errorf("%w: interval_seconds must be non-negative", domain.ErrConfigValidateFail)
	}
	switch p.OnTimeout {
	case "", TimeoutProceed, TimeoutAbort:
	default:
		return fmt.Errorf("%w: on_timeout %q", domain.ErrConfigValidateFail, p.OnTimeout)
	}
	for i, r := range p.Resolvers {
		if r == "" || !strings.Contains(r, ":") {
			return fmt.Errorf("%w: resolvers[%d] must be host:port", domain.ErrConfigValidateFail, i)
		}
	}
	return nil
}

func (p *Propagation) Wait() time.Duration {
	if p.WaitSeconds == 0 {
		return domain.DefaultPropagationWait
	}
	return time.Duration(p.WaitSeconds) * time.Second
}

func (p *Propagation) Interval() time.Duration {
	if p.IntervalSeconds == 0 {
		return domain.DefaultPropagationInterval
	}
	return time.Duration(p.IntervalSeconds) * time.Second
}

func (p *Propagation) Policy() TimeoutPolicy {
	if p.OnTimeout == "" {
		return TimeoutProceed
	}
	return p.OnTimeout
}

// DefaultResolvers are public resolvers outside any DNS provider's own
// infrastructure, so a lookup never hits the provider-side cache.
var DefaultResolvers = []string{"8.8.8.8:53", "1.1.1.1:53"}

func (p *Propagation) ResolverAddrs() []string {
	if len(p.Resolvers) == 0 {
		return DefaultResolvers
	}
	return p.Resolvers
}
