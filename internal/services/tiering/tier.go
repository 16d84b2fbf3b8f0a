// Package tiering classifies signing agents into ordered priority tiers.
// Vendors are ranked in four tiers:
//   - Bronze: the floor, every vendor qualifies
//   - Silver: established agents
//   - Gold: proven agents with a high first-pass funding rate
//   - Elite: top agents, offered work first
//
// A tier is never stored as the source of truth. It is a projection of the
// vendor's current metrics and can always be recomputed with Classify.
package tiering

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier is a vendor's priority tier. Tiers are totally ordered by their
// integer value, so they compare with < and >.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierElite
)

// String returns the tier name used in APIs and storage.
func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierElite:
		return "elite"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the four tiers.
func (t Tier) Valid() bool {
	return t >= TierBronze && t <= TierElite
}

// AtLeast reports whether t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t >= other
}

// AllTiers returns every tier from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold, TierElite}
}

// ValidTierNames returns all valid tier strings.
func ValidTierNames() []string {
	return []string{"bronze", "silver", "gold", "elite"}
}

// ParseTier parses a tier name, returning an error for anything else.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bronze":
		return TierBronze, nil
	case "silver":
		return TierSilver, nil
	case "gold":
		return TierGold, nil
	case "elite":
		return TierElite, nil
	default:
		return TierBronze, fmt.Errorf("invalid tier %q: must be one of %s", s, strings.Join(ValidTierNames(), ", "))
	}
}

func (t Tier) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid tier %d", int(t))
	}
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
