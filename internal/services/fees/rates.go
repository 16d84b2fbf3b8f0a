package fees

import (
	"fmt"
	"sort"
	"time"

	"signwise/internal/validation"
)

// DistanceBand charges FeeMinor for any distance up to and including UpToMiles.
type DistanceBand struct {
	UpToMiles float64 `json:"up_to_miles"`
	FeeMinor  int64   `json:"fee_minor"`
}

// DistanceSchedule mirrors a published mileage table: free within the included
// radius, flat bands after it, a per-mile rate past the last band.
type DistanceSchedule struct {
	IncludedMiles float64        `json:"included_miles"`
	Bands         []DistanceBand `json:"bands"`
	// PerMileBeyondMinor is charged per started mile past the last band, on top
	// of the last band's fee.
	PerMileBeyondMinor int64 `json:"per_mile_beyond_minor"`
}

type RushPolicy struct {
	// Threshold is the lead time under which a rush booking is surcharged.
	Threshold time.Duration `json:"threshold"`
	FeeMinor  int64         `json:"fee_minor"`
}

type TimeOfDayPolicy struct {
	EveningStartHour int `json:"evening_start_hour"`
	// LateNightStartHour 0 starts the late-night band at midnight, in which
	// case the evening band runs until midnight.
	LateNightStartHour int   `json:"late_night_start_hour"`
	LateNightEndHour   int   `json:"late_night_end_hour"`
	EveningFeeMinor    int64 `json:"evening_fee_minor"`
	LateNightFeeMinor  int64 `json:"late_night_fee_minor"`
	WeekendFeeMinor    int64 `json:"weekend_fee_minor"`
	HolidayFeeMinor    int64 `json:"holiday_fee_minor"`
	// Holidays are local calendar dates, formatted 2006-01-02.
	Holidays []string `json:"holidays"`
}

type DocumentPolicy struct {
	Included         int   `json:"included"`
	PerDocumentMinor int64 `json:"per_document_minor"`
}

// RateTable is the externally supplied pricing configuration. All amounts are
// integer minor units of Currency.
type RateTable struct {
	Currency     string                `json:"currency"`
	BaseRates    map[SigningType]int64 `json:"base_rates"`
	Distance     DistanceSchedule      `json:"distance"`
	Rush         RushPolicy            `json:"rush"`
	PriorityFees map[SLATier]int64     `json:"priority_fees"`
	TimeOfDay    TimeOfDayPolicy       `json:"time_of_day"`
	Documents    DocumentPolicy        `json:"documents"`
	LoanBonuses  map[LoanType]int64    `json:"loan_bonuses"`
}

const holidayLayout = "2006-01-02"

// MaxRateMinor caps every configured amount.
const MaxRateMinor int64 = 1_000_000_000_000

// Validate checks the table once so ComputeBreakdown can assume a sane
// configuration. The distance bands must be strictly ascending with
// non-decreasing fees, which keeps the distance fee monotonic.
func (rt RateTable) Validate() error {
	v := validation.New()

	v.Required("rates.currency", rt.Currency)

	v.Check(len(rt.BaseRates) > 0, "rates.base", "at least one signing type is required")
	for _, st := range SigningTypes() {
		if amount, ok := rt.BaseRates[st]; ok {
			field := fmt.Sprintf("rates.base.%s", st)
			v.Positive(field, amount)
			checkCap(v, field, amount)
		}
	}
	for _, st := range unknownKeys(rt.BaseRates, SigningTypes()) {
		v.AddError(fmt.Sprintf("rates.base.%s", st), "unknown signing type")
	}

	d := rt.Distance
	if v.Finite("rates.distance.included_miles", d.IncludedMiles) {
		v.Check(d.IncludedMiles >= 0, "rates.distance.included_miles", "must not be negative")
	}
	v.Check(len(d.Bands) > 0, "rates.distance.bands", "at least one band is required")
	prevUpTo, prevFee := d.IncludedMiles, int64(0)
	for i, band := range d.Bands {
		field := fmt.Sprintf("rates.distance.bands[%d]", i)
		if !v.Finite(field+".up_to_miles", band.UpToMiles) {
			continue
		}
		v.Check(band.UpToMiles > prevUpTo, field+".up_to_miles", "bands must be strictly ascending and start past the included radius")
		v.Check(band.FeeMinor >= prevFee, field+".fee_minor", "band fees must not decrease")
		checkCap(v, field+".fee_minor", band.FeeMinor)
		prevUpTo, prevFee = band.UpToMiles, band.FeeMinor
	}
	v.NonNegative("rates.distance.per_mile_beyond_minor", d.PerMileBeyondMinor)
	checkCap(v, "rates.distance.per_mile_beyond_minor", d.PerMileBeyondMinor)

	v.Check(rt.Rush.Threshold > 0, "rates.rush.threshold", "must be positive")
	v.NonNegative("rates.rush.fee_minor", rt.Rush.FeeMinor)
	checkCap(v, "rates.rush.fee_minor", rt.Rush.FeeMinor)

	for _, tier := range SLATiers() {
		amount, ok := rt.PriorityFees[tier]
		if !ok {
			continue
		}
		field := fmt.Sprintf("rates.priority.%s", tier)
		v.NonNegative(field, amount)
		checkCap(v, field, amount)
		if tier == SLAStandard {
			v.Check(amount == 0, field, "the standard tier carries no surcharge")
		}
	}
	for _, tier := range unknownKeys(rt.PriorityFees, SLATiers()) {
		v.AddError(fmt.Sprintf("rates.priority.%s", tier), "unknown SLA tier")
	}

	t := rt.TimeOfDay
	v.Check(validHour(t.EveningStartHour), "rates.time_of_day.evening_start_hour", "must be an hour between 0 and 23")
	v.Check(validHour(t.LateNightStartHour), "rates.time_of_day.late_night_start_hour", "must be an hour between 0 and 23")
	v.Check(validHour(t.LateNightEndHour), "rates.time_of_day.late_night_end_hour", "must be an hour between 0 and 23")
	v.Check(t.LateNightStartHour == 0 || t.EveningStartHour < t.LateNightStartHour,
		"rates.time_of_day.late_night_start_hour", "must come after the evening start or be 0 for midnight")
	v.Check(t.LateNightEndHour < t.EveningStartHour, "rates.time_of_day.late_night_end_hour", "must come before the evening start")
	timeOfDayFees := []struct {
		field  string
		amount int64
	}{
		{"rates.time_of_day.evening_fee_minor", t.EveningFeeMinor},
		{"rates.time_of_day.late_night_fee_minor", t.LateNightFeeMinor},
		{"rates.time_of_day.weekend_fee_minor", t.WeekendFeeMinor},
		{"rates.time_of_day.holiday_fee_minor", t.HolidayFeeMinor},
	}
	for _, f := range timeOfDayFees {
		v.NonNegative(f.field, f.amount)
		checkCap(v, f.field, f.amount)
	}
	for i, day := range t.Holidays {
		_, err := time.Parse(holidayLayout, day)
		v.Check(err == nil, fmt.Sprintf("rates.time_of_day.holidays[%d]", i), "must be a date formatted YYYY-MM-DD")
	}

	v.NonNegative("rates.documents.included", int64(rt.Documents.Included))
	v.NonNegative("rates.documents.per_document_minor", rt.Documents.PerDocumentMinor)
	checkCap(v, "rates.documents.per_document_minor", rt.Documents.PerDocumentMinor)

	v.Check(len(rt.LoanBonuses) > 0, "rates.loan_bonus", "at least one loan type is required")
	for _, lt := range LoanTypes() {
		if amount, ok := rt.LoanBonuses[lt]; ok {
			field := fmt.Sprintf("rates.loan_bonus.%s", lt)
			v.NonNegative(field, amount)
			checkCap(v, field, amount)
		}
	}
	for _, lt := range unknownKeys(rt.LoanBonuses, LoanTypes()) {
		v.AddError(fmt.Sprintf("rates.loan_bonus.%s", lt), "unknown loan type")
	}

	return v.Err()
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

func checkCap(v *validation.Validator, field string, amount int64) {
	v.Check(amount <= MaxRateMinor, field, fmt.Sprintf("must not exceed %d", MaxRateMinor))
}

// unknownKeys returns the keys of m missing from known, sorted.
func unknownKeys[K ~string, V any](m map[K]V, known []K) []K {
	var out []K
	for k := range m {
		found := false
		for _, kk := range known {
			if k == kk {
				found = true
				break
			}
		}
		if !found {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t TimeOfDayPolicy) isLateNight(hour int) bool {
	if t.LateNightStartHour == 0 {
		return hour < t.LateNightEndHour
	}
	return hour >= t.LateNightStartHour || hour < t.LateNightEndHour
}

func (rt RateTable) isHoliday(day string) bool {
	for _, h := range rt.TimeOfDay.Holidays {
		if h == day {
			return true
		}
	}
	return false
}
