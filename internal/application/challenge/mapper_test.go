package challenge

import (
	"errors"
	"reflect"
	"testing"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
)

func TestMapTargets_ApexAndWildcardShareTarget(t *testing.T) {
	targets, err := MapTargets([]string{"example.com", "*.example.com"}, nil)
	if err != nil {
		t.Fatalf("MapTargets() unexpected error = %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("MapTargets() = %d targets, want 1", len(targets))
	}

	target := targets[0]
	if target.RecordName != "_acme-challenge.example.com" {
		t.Errorf("RecordName = %q", target.RecordName)
	}
	if target.Zone != "example.com" {
		t.Errorf("Zone = %q", target.Zone)
	}
	if target.SubName != "_acme-challenge" {
		t.Errorf("SubName = %q", target.SubName)
	}
	want := []string{"example.com", "*.example.com"}
	if !reflect.DeepEqual(target.MemberDomains, want) {
		t.Errorf("MemberDomains = %v, want %v", target.MemberDomains, want)
	}
}

func TestMapTargets_UnrelatedZones(t *testing.T) {
	targets, err := MapTargets([]string{"example.com", "other.net"}, nil)
	if err != nil {
		t.Fatalf("MapTargets() unexpected error = %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("MapTargets() = %d targets, want 2", len(targets))
	}
	if targets[0].RecordName == targets[1].RecordName {
		t.Errorf("targets share record name %q", targets[0].RecordName)
	}
	if targets[0].RecordName != "_acme-challenge.example.com" {
		t.Errorf("targets[0].RecordName = %q", targets[0].RecordName)
	}
	if targets[1].RecordName != "_acme-challenge.other.net" {
		t.Errorf("targets[1].RecordName = %q", targets[1].RecordName)
	}
}

func TestMapTargets_Subdomain(t *testing.T) {
	targets, err := MapTargets([]string{"app.example.com"}, nil)
	if err != nil {
		t.Fatalf("MapTargets() unexpected error = %v", err)
	}
	if targets[0].RecordName != "_acme-challenge.app.example.com" {
		t.Errorf("RecordName = %q", targets[0].RecordName)
	}
	if targets[0].SubName != "_acme-challenge.app" {
		t.Errorf("SubName = %q", targets[0].SubName)
	}
}

func TestMapTargets_ZoneOverride(t *testing.T) {
	zoneOf := func(string) string { return "dev.example.com" }
	targets, err := MapTargets([]string{"*.dev.example.com"}, zoneOf)
	if err != nil {
		t.Fatalf("MapTargets() unexpected error = %v", err)
	}
	if targets[0].Zone != "dev.example.com" {
		t.Errorf("Zone = %q", targets[0].Zone)
	}
	if targets[0].SubName != "_acme-challenge" {
		t.Errorf("SubName = %q", targets[0].SubName)
	}
}

func TestMapTargets_InvalidDomain(t *testing.T) {
	_, err := MapTargets([]string{"example.com", "app.*.example.com"}, nil)
	if !errors.Is(err, domainerr.ErrInvalidDomainFormat) {
		t.Errorf("MapTargets() error = %v, want ErrInvalidDomainFormat", err)
	}
}

func TestMapTargets_Deterministic(t *testing.T) {
	domains := []string{"b.example.com", "a.example.com", "*.example.com", "example.com"}
	first, err := MapTargets(domains, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := MapTargets(domains, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 3 {
		t.Fatalf("targets = %d, want 3", len(first))
	}
	for i := range first {
		if first[i].RecordName != second[i].RecordName {
			t.Errorf("order differs at %d: %q vs %q", i, first[i].RecordName, second[i].RecordName)
		}
	}
	if first[0].RecordName != "_acme-challenge.b.example.com" {
		t.Errorf("first target = %q, want request order preserved", first[0].RecordName)
	}
}

func TestTarget_AddValue(t *testing.T) {
	target := &Target{}
	target.AddValue("aaa")
	target.AddValue("bbb")
	target.AddValue("aaa")
	if !reflect.DeepEqual(target.Values, []string{"aaa", "bbb"}) {
		t.Errorf("Values = %v", target.Values)
	}
}
