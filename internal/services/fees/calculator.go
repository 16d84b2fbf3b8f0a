// Package fees computes the itemized price of a signing assignment.
//
// ComputeBreakdown is a pure function of its input and the rate table: it reads
// no clock other than the supplied scheduled time, keeps no state and is safe
// to call from any number of goroutines. All arithmetic is in integer minor
// units, so the total is always the exact sum of the line items.
package fees

import (
	"fmt"
	"math"
	"time"

	apperr "signwise/internal/errors"
	"signwise/internal/validation"
)

// Input bounds. Together with MaxRateMinor they keep every line item and the
// total well inside int64.
const (
	MaxMiles     = 5000
	MaxDocuments = 1000
	MaxLeadTime  = 366 * 24 * time.Hour
)

// ComputeBreakdown prices one assignment. It fails with a ValidationError
// naming the offending field when the input or the rate table is malformed.
func ComputeBreakdown(in Input, rt RateTable) (Breakdown, error) {
	if err := rt.Validate(); err != nil {
		return Breakdown{}, err
	}
	if err := validateInput(in, rt); err != nil {
		return Breakdown{}, err
	}

	var distanceOK, documentsOK bool
	b := Breakdown{Currency: rt.Currency}
	b.Base = rt.BaseRates[in.SigningType]
	b.Distance, distanceOK = distanceFee(in.Miles, rt.Distance)
	b.Rush = rushFee(in, rt.Rush)
	b.Priority = rt.PriorityFees[in.SLATier]
	b.TimeBand, b.TimeOfDay = timeOfDayFee(in.ScheduledAt, rt)
	b.DocumentOverage, documentsOK = documentOverageFee(in.DocumentCount, rt.Documents)
	b.LoanBonus = rt.LoanBonuses[in.LoanType]
	if !distanceOK || !documentsOK {
		return Breakdown{}, errOverflow
	}

	b.LineItems = make([]LineItem, 0, len(lineCodes))
	b.Descriptions = make([]string, 0, len(lineCodes))
	for k := LineBase; k <= LineLoanBonus; k++ {
		amount := b.Amount(k)
		total, ok := addMinor(b.TotalMinorUnits, amount)
		if !ok {
			return Breakdown{}, errOverflow
		}
		b.TotalMinorUnits = total
		if amount == 0 {
			continue
		}
		label := lineLabel(k, b.TimeBand)
		b.LineItems = append(b.LineItems, LineItem{
			Code:             k.String(),
			Label:            label,
			AmountMinorUnits: amount,
		})
		b.Descriptions = append(b.Descriptions, describe(k, label, amount, in, rt))
	}

	return b, nil
}

func validateInput(in Input, rt RateTable) error {
	v := validation.New()

	_, ok := rt.BaseRates[in.SigningType]
	v.Check(ok, "signing_type", fmt.Sprintf("unknown signing type %q", in.SigningType))

	if v.Finite("miles", in.Miles) {
		v.Check(in.Miles >= 0, "miles", "distance must not be negative")
		v.Check(in.Miles <= MaxMiles, "miles", fmt.Sprintf("distance must not exceed %d miles", MaxMiles))
	}

	v.Check(in.LeadTime >= 0, "lead_time", "lead time must not be negative")
	v.Check(in.LeadTime <= MaxLeadTime, "lead_time", fmt.Sprintf("lead time must not exceed %s", MaxLeadTime))

	_, ok = rt.PriorityFees[in.SLATier]
	v.Check(ok || in.SLATier == SLAStandard, "sla_tier", fmt.Sprintf("unknown SLA tier %q", in.SLATier))

	v.Check(!in.ScheduledAt.IsZero(), "scheduled_at", "scheduled time is required")

	v.NonNegative("document_count", int64(in.DocumentCount))
	v.Check(in.DocumentCount <= MaxDocuments, "document_count", fmt.Sprintf("document count must not exceed %d", MaxDocuments))

	_, ok = rt.LoanBonuses[in.LoanType]
	v.Check(ok, "loan_type", fmt.Sprintf("unknown loan type %q", in.LoanType))

	return v.Err()
}

// distanceFee is non-decreasing in miles: bands are ascending with
// non-decreasing fees and the per-mile tail starts from the last band's fee.
func distanceFee(miles float64, d DistanceSchedule) (int64, bool) {
	if miles <= d.IncludedMiles {
		return 0, true
	}
	for _, band := range d.Bands {
		if miles <= band.UpToMiles {
			return band.FeeMinor, true
		}
	}
	last := d.Bands[len(d.Bands)-1]
	extraMiles := int64(math.Ceil(miles - last.UpToMiles))
	tail, ok := mulMinor(extraMiles, d.PerMileBeyondMinor)
	if !ok {
		return 0, false
	}
	return addMinor(last.FeeMinor, tail)
}

func rushFee(in Input, p RushPolicy) int64 {
	if in.Rush && in.LeadTime < p.Threshold {
		return p.FeeMinor
	}
	return 0
}

// timeOfDayFee picks at most one band: holiday, then weekend, then late night,
// then evening.
func timeOfDayFee(at time.Time, rt RateTable) (TimeBand, int64) {
	t := rt.TimeOfDay
	switch {
	case rt.isHoliday(at.Format(holidayLayout)):
		return BandHoliday, t.HolidayFeeMinor
	case at.Weekday() == time.Saturday || at.Weekday() == time.Sunday:
		return BandWeekend, t.WeekendFeeMinor
	case t.isLateNight(at.Hour()):
		return BandLateNight, t.LateNightFeeMinor
	case at.Hour() >= t.EveningStartHour:
		return BandEvening, t.EveningFeeMinor
	}
	return BandNone, 0
}

func documentOverageFee(count int, p DocumentPolicy) (int64, bool) {
	over := count - p.Included
	if over <= 0 {
		return 0, true
	}
	return mulMinor(int64(over), p.PerDocumentMinor)
}

var errOverflow = apperr.Invariant("fee amount does not fit in 64-bit minor units")

// addMinor and mulMinor report false instead of wrapping around.
func addMinor(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, false
	}
	return c, true
}

func mulMinor(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

func lineLabel(k LineKind, band TimeBand) string {
	switch k {
	case LineBase:
		return "Base fee"
	case LineDistance:
		return "Distance fee"
	case LineRush:
		return "Rush fee"
	case LinePriority:
		return "Priority fee"
	case LineTimeOfDay:
		switch band {
		case BandHoliday:
			return "Holiday fee"
		case BandWeekend:
			return "Weekend fee"
		case BandLateNight:
			return "Late-night fee"
		default:
			return "Evening fee"
		}
	case LineDocumentOverage:
		return "Document overage fee"
	case LineLoanBonus:
		return "Loan-type bonus"
	}
	return "Fee"
}

func describe(k LineKind, label string, amount int64, in Input, rt RateTable) string {
	money := FormatMinor(amount, rt.Currency)
	switch k {
	case LineBase:
		return fmt.Sprintf("%s (%s): %s", label, in.SigningType, money)
	case LineDistance:
		return fmt.Sprintf("%s (%.1f mi): %s", label, in.Miles, money)
	case LineRush:
		return fmt.Sprintf("%s (%s lead time): %s", label, in.LeadTime, money)
	case LinePriority:
		return fmt.Sprintf("%s (%s SLA): %s", label, in.SLATier, money)
	case LineDocumentOverage:
		over := in.DocumentCount - rt.Documents.Included
		return fmt.Sprintf("%s (%d x %s): %s", label, over, FormatMinor(rt.Documents.PerDocumentMinor, rt.Currency), money)
	case LineLoanBonus:
		return fmt.Sprintf("%s (%s): %s", label, in.LoanType, money)
	}
	return fmt.Sprintf("%s: %s", label, money)
}
