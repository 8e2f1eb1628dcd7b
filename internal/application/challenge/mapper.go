package challenge

import (
	"github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
)

// Target is one _acme-challenge record name that must carry TXT values for
// this run. An apex and its wildcard share one target but remain distinct
// authorizations, so a target can hold several values.
type Target struct {
	// RecordName is the fully qualified name, _acme-challenge.<name>.
	RecordName string
	// Zone is the managed zone the record lives in; SubName is RecordName
	// relative to that zone.
	Zone    string
	SubName string
	// MemberDomains are the requested names that resolve to this record,
	// in request order.
	MemberDomains []string
	// Values are the distinct TXT values to publish, filled in once the
	// order's authorizations are known.
	Values []string
}

// AddValue records a TXT value, keeping the list deduplicated and ordered.
func (t *Target) AddValue(value string) {
	for _, v := range t.Values {
		if v == value {
			return
		}
	}
	t.Values = append(t.Values, value)
}

// MapTargets groups requested domains by challenge record name. A wildcard
// and its apex fold into the same target; any other name gets its own. The
// result preserves first-appearance order. zoneOf resolves the managed zone
// for a name; nil means the registered zone (last two labels).
func MapTargets(domains []string, zoneOf func(name string) string) ([]*Target, error) {
	if zoneOf == nil {
		zoneOf = entity.RegisteredZone
	}

	var targets []*Target
	byName := make(map[string]*Target)

	for _, d := range domains {
		if err := entity.ValidateDomainName(d); err != nil {
			return nil, err
		}

		bare := entity.BareName(d)
		recordName := domain.ChallengePrefix + "." + bare

		target, ok := byName[recordName]
		if !ok {
			zone := zoneOf(d)
			target = &Target{
				RecordName: recordName,
				Zone:       zone,
				SubName:    challengeSubName(bare, zone),
			}
			byName[recordName] = target
			targets = append(targets, target)
		}
		target.MemberDomains = append(target.MemberDomains, d)
	}

	return targets, nil
}

// challengeSubName builds the record name relative to the zone:
// _acme-challenge for the apex, _acme-challenge.<sub> below it.
func challengeSubName(bare, zone string) string {
	if bare == zone {
		return domain.ChallengePrefix
	}
	suffix := "." + zone
	if len(bare) > len(suffix) && bare[len(bare)-len(suffix):] == suffix {
		return domain.ChallengePrefix + "." + bare[:len(bare)-len(suffix)]
	}
	return domain.ChallengePrefix + "." + bare
}
