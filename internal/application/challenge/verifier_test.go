package challenge

import (
	"context"
	"errors"
	"testing"
	"time"

	mdns "github.com/miekg/dns"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/infrastructure/logger"
)

func txtResponse(name string, values ...string) *mdns.Msg {
	resp := new(mdns.Msg)
	resp.Answer = append(resp.Answer, &mdns.TXT{
		Hdr: mdns.RR_Header{Name: mdns.Fqdn(name), Rrtype: mdns.TypeTXT, Class: mdns.ClassINET},
		Txt: values,
	})
	return resp
}

func TestVerifier_Wait_FindsValue(t *testing.T) {
	v := NewVerifier([]string{"198.51.100.1:53"}, logger.L()).WithExchange(
		func(ctx context.Context, msg *mdns.Msg, addr string) (*mdns.Msg, error) {
			return txtResponse("_acme-challenge.example.com", "other", "digest"), nil
		})

	found, err := v.Wait(context.Background(), "_acme-challenge.example.com", "digest",
		200*time.Millisecond, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait() unexpected error = %v", err)
	}
	if !found {
		t.Error("Wait() = false, want true")
	}
}

func TestVerifier_Wait_EventualPropagation(t *testing.T) {
	calls := 0
	v := NewVerifier([]string{"198.51.100.1:53"}, logger.L()).WithExchange(
		func(ctx context.Context, msg *mdns.Msg, addr string) (*mdns.Msg, error) {
			calls++
			if calls < 3 {
				return new(mdns.Msg), nil
			}
			return txtResponse("_acme-challenge.example.com", "digest"), nil
		})

	found, err := v.Wait(context.Background(), "_acme-challenge.example.com", "digest",
		500*time.Millisecond, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait() unexpected error = %v", err)
	}
	if !found {
		t.Error("Wait() = false after record appeared")
	}
}

func TestVerifier_Wait_TimeoutIsNotAnError(t *testing.T) {
	v := NewVerifier([]string{"198.51.100.1:53"}, logger.L()).WithExchange(
		func(ctx context.Context, msg *mdns.Msg, addr string) (*mdns.Msg, error) {
			return new(mdns.Msg), nil
		})

	found, err := v.Wait(context.Background(), "_acme-challenge.example.com", "digest",
		50*time.Millisecond, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait() timeout should not error, got %v", err)
	}
	if found {
		t.Error("Wait() = true, want false")
	}
}

func TestVerifier_Wait_AllLookupsFailed(t *testing.T) {
	v := NewVerifier([]string{"198.51.100.1:53", "198.51.100.2:53"}, logger.L()).WithExchange(
		func(ctx context.Context, msg *mdns.Msg, addr string) (*mdns.Msg, error) {
			return nil, errors.New("i/o timeout")
		})

	_, err := v.Wait(context.Background(), "_acme-challenge.example.com", "digest",
		50*time.Millisecond, 10*time.Millisecond)
	if !errors.Is(err, domainerr.ErrPropagationUnavailable) {
		t.Errorf("Wait() error = %v, want ErrPropagationUnavailable", err)
	}
}

func TestVerifier_Wait_SecondResolverAnswers(t *testing.T) {
	v := NewVerifier([]string{"198.51.100.1:53", "198.51.100.2:53"}, logger.L()).WithExchange(
		func(ctx context.Context, msg *mdns.Msg, addr string) (*mdns.Msg, error) {
			if addr == "198.51.100.1:53" {
				return nil, errors.New("connection refused")
			}
			return txtResponse("_acme-challenge.example.com", "digest"), nil
		})

	found, err := v.Wait(context.Background(), "_acme-challenge.example.com", "digest",
		100*time.Millisecond, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait() unexpected error = %v", err)
	}
	if !found {
		t.Error("Wait() = false although second resolver answered")
	}
}

func TestVerifier_Wait_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	v := NewVerifier([]string{"198.51.100.1:53"}, logger.L()).WithExchange(
		func(ctx context.Context, msg *mdns.Msg, addr string) (*mdns.Msg, error) {
			cancel()
			return new(mdns.Msg), nil
		})

	_, err := v.Wait(ctx, "_acme-challenge.example.com", "digest",
		time.Second, 10*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}
