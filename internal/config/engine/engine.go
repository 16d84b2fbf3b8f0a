// Package engine loads the pricing, tiering, pilot and scoring configuration
// from YAML. Every key is required: a missing key fails validation with its
// dotted path instead of falling back to a default.
package engine

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	apperr "signwise/internal/errors"
	"signwise/internal/services/fees"
	"signwise/internal/services/pilot"
	"signwise/internal/services/tiering"
	"signwise/internal/services/vendor"
	"signwise/internal/validation"

	"gopkg.in/yaml.v3"
)

// Config is the validated engine configuration.
type Config struct {
	Rates   fees.RateTable
	Tiers   tiering.Thresholds
	Pilot   pilot.Config
	Scoring vendor.Policy
}

// Validate runs the semantic checks of every section.
func (c *Config) Validate() error {
	if err := c.Rates.Validate(); err != nil {
		return err
	}
	if err := c.Tiers.Validate(); err != nil {
		return err
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if c.Scoring.MaxScore < c.Tiers.Elite.MinScore {
		return apperr.Validationf("scoring.max_score", "must reach the elite minimum of %d", c.Tiers.Elite.MinScore)
	}
	v := validation.New()
	v.Positive("pilot.allotment", int64(c.Pilot.Allotment))
	v.NonNegative("pilot.max_attempts", int64(c.Pilot.MaxAttempts))
	return v.Err()
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML engine configuration. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, apperr.Validation("engine_config", err.Error())
	}

	cfg, err := f.build()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type file struct {
	Rates   *ratesFile   `yaml:"rates"`
	Tiers   *tiersFile   `yaml:"tiers"`
	Pilot   *pilotFile   `yaml:"pilot"`
	Scoring *scoringFile `yaml:"scoring"`
}

type ratesFile struct {
	Currency  *string           `yaml:"currency"`
	Base      map[string]*int64 `yaml:"base"`
	Distance  *distanceFile     `yaml:"distance"`
	Rush      *rushFile         `yaml:"rush"`
	Priority  map[string]*int64 `yaml:"priority"`
	TimeOfDay *timeOfDayFile    `yaml:"time_of_day"`
	Documents *documentsFile    `yaml:"documents"`
	LoanBonus map[string]*int64 `yaml:"loan_bonus"`
}

type distanceFile struct {
	IncludedMiles      *float64   `yaml:"included_miles"`
	Bands              []bandFile `yaml:"bands"`
	PerMileBeyondMinor *int64     `yaml:"per_mile_beyond_minor"`
}

type bandFile struct {
	UpToMiles *float64 `yaml:"up_to_miles"`
	FeeMinor  *int64   `yaml:"fee_minor"`
}

type rushFile struct {
	Threshold *string `yaml:"threshold"`
	FeeMinor  *int64  `yaml:"fee_minor"`
}

type timeOfDayFile struct {
	EveningStartHour   *int     `yaml:"evening_start_hour"`
	LateNightStartHour *int     `yaml:"late_night_start_hour"`
	LateNightEndHour   *int     `yaml:"late_night_end_hour"`
	EveningFeeMinor    *int64   `yaml:"evening_fee_minor"`
	LateNightFeeMinor  *int64   `yaml:"late_night_fee_minor"`
	WeekendFeeMinor    *int64   `yaml:"weekend_fee_minor"`
	HolidayFeeMinor    *int64   `yaml:"holiday_fee_minor"`
	Holidays           []string `yaml:"holidays"`
}

type documentsFile struct {
	Included         *int   `yaml:"included"`
	PerDocumentMinor *int64 `yaml:"per_document_minor"`
}

type tiersFile struct {
	ScoreFloor *int             `yaml:"score_floor"`
	Silver     *requirementFile `yaml:"silver"`
	Gold       *requirementFile `yaml:"gold"`
	Elite      *requirementFile `yaml:"elite"`
}

type requirementFile struct {
	MinScore          *int     `yaml:"min_score"`
	MinCompleted      *int     `yaml:"min_completed"`
	MinFirstPassRate  *float64 `yaml:"min_first_pass_rate"`
	RequireCommission bool     `yaml:"require_commission"`
	RequireRON        bool     `yaml:"require_ron"`
}

type pilotFile struct {
	Allotment   *int `yaml:"allotment"`
	MaxAttempts int  `yaml:"max_attempts"`
}

type scoringFile struct {
	CompletionPoints  *int `yaml:"completion_points"`
	FirstPassBonus    *int `yaml:"first_pass_bonus"`
	CorrectionPenalty *int `yaml:"correction_penalty"`
	FailurePenalty    *int `yaml:"failure_penalty"`
	MaxScore          *int `yaml:"max_score"`
}

// required records a missing key and returns the zero value for it.
func required[T any](v *validation.Validator, path string, p *T) T {
	var zero T
	if p == nil {
		v.AddError(path, "is required")
		return zero
	}
	return *p
}

func section(v *validation.Validator, path string, present bool) bool {
	v.Check(present, path, "is required")
	return present
}

func (f *file) build() (*Config, error) {
	v := validation.New()
	cfg := &Config{}

	if section(v, "rates", f.Rates != nil) {
		cfg.Rates = f.Rates.build(v)
	}
	if section(v, "tiers", f.Tiers != nil) {
		cfg.Tiers = f.Tiers.build(v)
	}
	if section(v, "pilot", f.Pilot != nil) {
		cfg.Pilot = pilot.Config{
			Allotment:   required(v, "pilot.allotment", f.Pilot.Allotment),
			MaxAttempts: f.Pilot.MaxAttempts,
		}
	}
	if section(v, "scoring", f.Scoring != nil) {
		s := f.Scoring
		cfg.Scoring = vendor.Policy{
			CompletionPoints:  required(v, "scoring.completion_points", s.CompletionPoints),
			FirstPassBonus:    required(v, "scoring.first_pass_bonus", s.FirstPassBonus),
			CorrectionPenalty: required(v, "scoring.correction_penalty", s.CorrectionPenalty),
			FailurePenalty:    required(v, "scoring.failure_penalty", s.FailurePenalty),
			MaxScore:          required(v, "scoring.max_score", s.MaxScore),
			ScoreFloor:        cfg.Tiers.ScoreFloor,
		}
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *ratesFile) build(v *validation.Validator) fees.RateTable {
	rt := fees.RateTable{
		Currency:     required(v, "rates.currency", r.Currency),
		BaseRates:    make(map[fees.SigningType]int64),
		PriorityFees: make(map[fees.SLATier]int64),
		LoanBonuses:  make(map[fees.LoanType]int64),
	}

	if section(v, "rates.base", r.Base != nil) {
		for _, key := range sortedKeys(r.Base) {
			path := "rates.base." + key
			v.Check(knownSigningType(key), path, "unknown signing type")
			rt.BaseRates[fees.SigningType(key)] = required(v, path, r.Base[key])
		}
	}

	if section(v, "rates.distance", r.Distance != nil) {
		d := r.Distance
		rt.Distance.IncludedMiles = required(v, "rates.distance.included_miles", d.IncludedMiles)
		rt.Distance.PerMileBeyondMinor = required(v, "rates.distance.per_mile_beyond_minor", d.PerMileBeyondMinor)
		section(v, "rates.distance.bands", len(d.Bands) > 0)
		for i, b := range d.Bands {
			path := fmt.Sprintf("rates.distance.bands[%d]", i)
			rt.Distance.Bands = append(rt.Distance.Bands, fees.DistanceBand{
				UpToMiles: required(v, path+".up_to_miles", b.UpToMiles),
				FeeMinor:  required(v, path+".fee_minor", b.FeeMinor),
			})
		}
	}

	if section(v, "rates.rush", r.Rush != nil) {
		threshold := required(v, "rates.rush.threshold", r.Rush.Threshold)
		if r.Rush.Threshold != nil {
			d, err := time.ParseDuration(threshold)
			v.Check(err == nil, "rates.rush.threshold", "must be a duration such as 4h")
			rt.Rush.Threshold = d
		}
		rt.Rush.FeeMinor = required(v, "rates.rush.fee_minor", r.Rush.FeeMinor)
	}

	if section(v, "rates.priority", r.Priority != nil) {
		for _, tier := range fees.SLATiers() {
			path := "rates.priority." + string(tier)
			rt.PriorityFees[tier] = required(v, path, r.Priority[string(tier)])
		}
		for _, key := range sortedKeys(r.Priority) {
			v.Check(knownSLATier(key), "rates.priority."+key, "unknown SLA tier")
		}
	}

	if section(v, "rates.time_of_day", r.TimeOfDay != nil) {
		t := r.TimeOfDay
		rt.TimeOfDay = fees.TimeOfDayPolicy{
			EveningStartHour:   required(v, "rates.time_of_day.evening_start_hour", t.EveningStartHour),
			LateNightStartHour: required(v, "rates.time_of_day.late_night_start_hour", t.LateNightStartHour),
			LateNightEndHour:   required(v, "rates.time_of_day.late_night_end_hour", t.LateNightEndHour),
			EveningFeeMinor:    required(v, "rates.time_of_day.evening_fee_minor", t.EveningFeeMinor),
			LateNightFeeMinor:  required(v, "rates.time_of_day.late_night_fee_minor", t.LateNightFeeMinor),
			WeekendFeeMinor:    required(v, "rates.time_of_day.weekend_fee_minor", t.WeekendFeeMinor),
			HolidayFeeMinor:    required(v, "rates.time_of_day.holiday_fee_minor", t.HolidayFeeMinor),
			Holidays:           t.Holidays,
		}
	}

	if section(v, "rates.documents", r.Documents != nil) {
		rt.Documents = fees.DocumentPolicy{
			Included:         required(v, "rates.documents.included", r.Documents.Included),
			PerDocumentMinor: required(v, "rates.documents.per_document_minor", r.Documents.PerDocumentMinor),
		}
	}

	if section(v, "rates.loan_bonus", r.LoanBonus != nil) {
		for _, key := range sortedKeys(r.LoanBonus) {
			path := "rates.loan_bonus." + key
			v.Check(knownLoanType(key), path, "unknown loan type")
			rt.LoanBonuses[fees.LoanType(key)] = required(v, path, r.LoanBonus[key])
		}
	}

	return rt
}

func (t *tiersFile) build(v *validation.Validator) tiering.Thresholds {
	th := tiering.Thresholds{ScoreFloor: required(v, "tiers.score_floor", t.ScoreFloor)}
	th.Silver = t.Silver.build(v, "tiers.silver")
	th.Gold = t.Gold.build(v, "tiers.gold")
	th.Elite = t.Elite.build(v, "tiers.elite")
	return th
}

func (r *requirementFile) build(v *validation.Validator, path string) tiering.Requirement {
	if !section(v, path, r != nil) {
		return tiering.Requirement{}
	}
	return tiering.Requirement{
		MinScore:          required(v, path+".min_score", r.MinScore),
		MinCompleted:      required(v, path+".min_completed", r.MinCompleted),
		MinFirstPassRate:  required(v, path+".min_first_pass_rate", r.MinFirstPassRate),
		RequireCommission: r.RequireCommission,
		RequireRON:        r.RequireRON,
	}
}

func sortedKeys(m map[string]*int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func knownSigningType(s string) bool {
	for _, st := range fees.SigningTypes() {
		if string(st) == s {
			return true
		}
	}
	return false
}

func knownSLATier(s string) bool {
	for _, t := range fees.SLATiers() {
		if string(t) == s {
			return true
		}
	}
	return false
}

func knownLoanType(s string) bool {
	for _, lt := range fees.LoanTypes() {
		if string(lt) == s {
			return true
		}
	}
	return false
}
