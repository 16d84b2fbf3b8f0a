package tiering

import (
	"fmt"

	"signwise/internal/validation"
)

// Metrics are the rolling performance counters of one vendor. They are owned
// and updated by the caller; Classify only reads them.
type Metrics struct {
	CompletedSignings  int     `json:"completed_signings"`
	FirstPassRate      float64 `json:"first_pass_rate"`
	Score              int     `json:"score"`
	CommissionEligible bool    `json:"commission_eligible"`
	RONCertified       bool    `json:"ron_certified"`
}

// Requirement is the inclusive minimum a vendor must meet on every axis at
// once to hold a tier.
type Requirement struct {
	MinScore          int     `json:"min_score"`
	MinCompleted      int     `json:"min_completed"`
	MinFirstPassRate  float64 `json:"min_first_pass_rate"`
	RequireCommission bool    `json:"require_commission"`
	RequireRON        bool    `json:"require_ron"`
}

// Met reports whether m satisfies every part of the requirement.
func (r Requirement) Met(m Metrics) bool {
	return len(r.gaps(m)) == 0
}

func (r Requirement) gaps(m Metrics) []string {
	var missing []string
	if m.Score < r.MinScore {
		missing = append(missing, fmt.Sprintf("score %d of %d", m.Score, r.MinScore))
	}
	if m.CompletedSignings < r.MinCompleted {
		missing = append(missing, fmt.Sprintf("completed signings %d of %d", m.CompletedSignings, r.MinCompleted))
	}
	if m.FirstPassRate < r.MinFirstPassRate {
		missing = append(missing, fmt.Sprintf("first-pass rate %.2f of %.2f", m.FirstPassRate, r.MinFirstPassRate))
	}
	if r.RequireCommission && !m.CommissionEligible {
		missing = append(missing, "commission eligibility")
	}
	if r.RequireRON && !m.RONCertified {
		missing = append(missing, "RON certification")
	}
	return missing
}

// Thresholds configure the classifier. Bronze has no requirement.
type Thresholds struct {
	// ScoreFloor is the lowest score a vendor can hold.
	ScoreFloor int         `json:"score_floor"`
	Silver     Requirement `json:"silver"`
	Gold       Requirement `json:"gold"`
	Elite      Requirement `json:"elite"`
}

// Requirement returns the requirement for a tier above bronze.
func (th Thresholds) Requirement(t Tier) (Requirement, bool) {
	switch t {
	case TierSilver:
		return th.Silver, true
	case TierGold:
		return th.Gold, true
	case TierElite:
		return th.Elite, true
	}
	return Requirement{}, false
}

// Validate checks that each tier's requirement is at least as strict as the
// tier below it.
func (th Thresholds) Validate() error {
	v := validation.New()

	prev := Requirement{MinScore: th.ScoreFloor}
	for _, t := range []Tier{TierSilver, TierGold, TierElite} {
		r, _ := th.Requirement(t)
		field := "tiers." + t.String()

		v.Check(r.MinScore >= prev.MinScore, field+".min_score",
			fmt.Sprintf("must be at least %d", prev.MinScore))
		v.Check(r.MinCompleted >= prev.MinCompleted, field+".min_completed",
			fmt.Sprintf("must be at least %d", prev.MinCompleted))
		v.Range(field+".min_first_pass_rate", r.MinFirstPassRate, 0, 1)
		v.Check(r.MinFirstPassRate >= prev.MinFirstPassRate, field+".min_first_pass_rate",
			fmt.Sprintf("must be at least %v", prev.MinFirstPassRate))
		v.Check(r.RequireCommission || !prev.RequireCommission, field+".require_commission",
			"cannot be dropped by a higher tier")
		v.Check(r.RequireRON || !prev.RequireRON, field+".require_ron",
			"cannot be dropped by a higher tier")

		prev = r
	}

	return v.Err()
}

// Classification is the tier/score pair consumers route on.
type Classification struct {
	Tier  Tier `json:"tier"`
	Score int  `json:"score"`
}

// Classify returns the highest tier whose requirement m meets. It is pure:
// identical inputs give identical output, and raising any single metric never
// lowers the tier.
func Classify(m Metrics, th Thresholds) (Classification, error) {
	if err := th.Validate(); err != nil {
		return Classification{}, err
	}
	if err := validateMetrics(m, th); err != nil {
		return Classification{}, err
	}

	for _, t := range []Tier{TierElite, TierGold, TierSilver} {
		r, _ := th.Requirement(t)
		if r.Met(m) {
			return Classification{Tier: t, Score: m.Score}, nil
		}
	}
	return Classification{Tier: TierBronze, Score: m.Score}, nil
}

func validateMetrics(m Metrics, th Thresholds) error {
	v := validation.New()
	v.Check(m.Score >= th.ScoreFloor, "score", fmt.Sprintf("must not be below the floor of %d", th.ScoreFloor))
	v.NonNegative("completed_signings", int64(m.CompletedSignings))
	v.Range("first_pass_rate", m.FirstPassRate, 0, 1)
	return v.Err()
}

// Gap describes what a vendor is missing for the next tier up.
type Gap struct {
	Next    Tier     `json:"next"`
	Missing []string `json:"missing"`
}

// NextTierGap reports what keeps m from the tier above its current one. The
// second result is false for elite vendors.
func NextTierGap(m Metrics, th Thresholds) (Gap, bool, error) {
	c, err := Classify(m, th)
	if err != nil {
		return Gap{}, false, err
	}
	if c.Tier == TierElite {
		return Gap{}, false, nil
	}
	next := c.Tier + 1
	r, _ := th.Requirement(next)
	return Gap{Next: next, Missing: r.gaps(m)}, true, nil
}
