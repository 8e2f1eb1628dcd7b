package challenge

import (
	"context"
	"fmt"
	"time"

	mdns "github.com/miekg/dns"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/infrastructure/logger"
)

// ExchangeFunc performs one DNS query against one resolver.
type ExchangeFunc func(ctx context.Context, msg *mdns.Msg, addr string) (*mdns.Msg, error)

// Verifier polls public resolvers for a challenge record until the expected
// value shows up or the wait budget runs out. It queries resolvers the DNS
// provider does not control, so a positive answer means the record actually
// left the provider's edit queue.
type Verifier struct {
	resolvers []string
	exchange  ExchangeFunc
	log       *logger.Logger
}

func NewVerifier(resolvers []string, log *logger.Logger) *Verifier {
	if log == nil {
		log = logger.L()
	}
	client := &mdns.Client{Timeout: 5 * time.Second}
	return &Verifier{
		resolvers: resolvers,
		log:       log,
		exchange: func(ctx context.Context, msg *mdns.Msg, addr string) (*mdns.Msg, error) {
			resp, _, err := client.ExchangeContext(ctx, msg, addr)
			return resp, err
		},
	}
}

// WithExchange swaps the query function, for tests.
func (v *Verifier) WithExchange(fn ExchangeFunc) *Verifier {
	v.exchange = fn
	return v
}

// Wait polls recordName until a TXT answer containing expectedValue is seen.
// A timeout with at least one answered lookup returns (false, nil); the
// caller decides whether that aborts the run. Only when every single lookup
// in the window errors does Wait fail, since then nothing was actually
// checked.
func (v *Verifier) Wait(ctx context.Context, recordName, expectedValue string, timeout, interval time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	anyAnswered := false
	var lastErr error

	for {
		found, answered, err := v.lookup(ctx, recordName, expectedValue)
		if err != nil {
			lastErr = err
		}
		anyAnswered = anyAnswered || answered
		if found {
			return true, nil
		}

		if time.Now().Add(interval).After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(interval):
		}
	}

	if !anyAnswered {
		return false, fmt.Errorf("%w: %s: %v", domainerr.ErrPropagationUnavailable, recordName, lastErr)
	}
	v.log.Warn("propagation not confirmed within budget", "record", recordName, "timeout", timeout)
	return false, nil
}

// lookup queries each resolver once. found is true when any resolver
// returned the expected value; answered is true when at least one resolver
// produced a response at all.
func (v *Verifier) lookup(ctx context.Context, recordName, expectedValue string) (found, answered bool, lastErr error) {
	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(recordName), mdns.TypeTXT)

	for _, addr := range v.resolvers {
		resp, err := v.exchange(ctx, msg, addr)
		if err != nil {
			lastErr = err
			continue
		}
		answered = true

		for _, rr := range resp.Answer {
			txt, ok := rr.(*mdns.TXT)
			if !ok {
				continue
			}
			for _, value := range txt.Txt {
				if value == expectedValue {
					return true, true, nil
				}
			}
		}
	}
	return false, answered, lastErr
}
