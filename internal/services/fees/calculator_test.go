package fees

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	apperr "signwise/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRateTable() RateTable {
	return RateTable{
		Currency: "USD",
		BaseRates: map[SigningType]int64{
			SigningLoan:    12500,
			SigningGeneral: 5000,
			SigningRemote:  7500,
		},
		Distance: DistanceSchedule{
			IncludedMiles: 15,
			Bands: []DistanceBand{
				{UpToMiles: 25, FeeMinor: 3000},
				{UpToMiles: 40, FeeMinor: 5000},
				{UpToMiles: 60, FeeMinor: 7000},
			},
			PerMileBeyondMinor: 200,
		},
		Rush: RushPolicy{Threshold: 4 * time.Hour, FeeMinor: 2500},
		PriorityFees: map[SLATier]int64{
			SLAStandard: 0,
			SLAPriority: 1500,
			SLAExpress:  3000,
			SLARescue:   5000,
		},
		TimeOfDay: TimeOfDayPolicy{
			EveningStartHour:   18,
			LateNightStartHour: 21,
			LateNightEndHour:   6,
			EveningFeeMinor:    1500,
			LateNightFeeMinor:  3500,
			WeekendFeeMinor:    2500,
			HolidayFeeMinor:    5000,
			Holidays:           []string{"2025-12-25"},
		},
		Documents: DocumentPolicy{Included: 5, PerDocumentMinor: 500},
		LoanBonuses: map[LoanType]int64{
			LoanPurchase:  0,
			LoanRefinance: 0,
			LoanHELOC:     1000,
			LoanReverse:   2500,
		},
	}
}

// Wednesday, mid-morning.
var weekdayMorning = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

func standardInput() Input {
	return Input{
		SigningType:   SigningLoan,
		Miles:         5,
		LeadTime:      72 * time.Hour,
		SLATier:       SLAStandard,
		ScheduledAt:   weekdayMorning,
		DocumentCount: 5,
		LoanType:      LoanPurchase,
	}
}

func TestComputeBreakdown_StandardSigningHasOnlyBase(t *testing.T) {
	b, err := ComputeBreakdown(standardInput(), testRateTable())
	require.NoError(t, err)

	require.Len(t, b.LineItems, 1)
	assert.Equal(t, "base", b.LineItems[0].Code)
	assert.Equal(t, int64(12500), b.LineItems[0].AmountMinorUnits)
	assert.Equal(t, b.Base, b.TotalMinorUnits)
	assert.Equal(t, []string{"Base fee (loan_signing): $125.00"}, b.Descriptions)
	assert.Equal(t, BandNone, b.TimeBand)
}

func TestComputeBreakdown_FullyLoadedAssignment(t *testing.T) {
	in := standardInput()
	in.Miles = 35
	in.Rush = true
	in.LeadTime = 2 * time.Hour
	in.SLATier = SLAExpress
	in.ScheduledAt = time.Date(2025, 6, 11, 23, 0, 0, 0, time.UTC)
	in.DocumentCount = 8
	in.LoanType = LoanHELOC

	b, err := ComputeBreakdown(in, testRateTable())
	require.NoError(t, err)

	codes := make([]string, 0, len(b.LineItems))
	var sum int64
	for _, li := range b.LineItems {
		codes = append(codes, li.Code)
		sum += li.AmountMinorUnits
	}
	assert.Equal(t, []string{"base", "distance", "rush", "priority", "time_of_day", "document_overage", "loan_bonus"}, codes)
	assert.Equal(t, sum, b.TotalMinorUnits)
	assert.Equal(t, int64(12500+5000+2500+3000+3500+1500+1000), b.TotalMinorUnits)
	assert.Equal(t, BandLateNight, b.TimeBand)
	assert.Equal(t, []string{
		"Base fee (loan_signing): $125.00",
		"Distance fee (35.0 mi): $50.00",
		"Rush fee (2h0m0s lead time): $25.00",
		"Priority fee (express SLA): $30.00",
		"Late-night fee: $35.00",
		"Document overage fee (3 x $5.00): $15.00",
		"Loan-type bonus (heloc): $10.00",
	}, b.Descriptions)
}

func TestComputeBreakdown_ValidationErrorsNameTheField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"negative distance", func(in *Input) { in.Miles = -1 }, "miles"},
		{"unknown signing type", func(in *Input) { in.SigningType = "apostille" }, "signing_type"},
		{"unknown loan type", func(in *Input) { in.LoanType = "balloon" }, "loan_type"},
		{"unknown sla tier", func(in *Input) { in.SLATier = "instant" }, "sla_tier"},
		{"negative lead time", func(in *Input) { in.LeadTime = -time.Minute }, "lead_time"},
		{"negative documents", func(in *Input) { in.DocumentCount = -2 }, "document_count"},
		{"missing schedule", func(in *Input) { in.ScheduledAt = time.Time{} }, "scheduled_at"},
		{"absurd distance", func(in *Input) { in.Miles = MaxMiles + 1 }, "miles"},
		{"too many documents", func(in *Input) { in.DocumentCount = MaxDocuments + 1 }, "document_count"},
		{"document count near int64 max", func(in *Input) { in.DocumentCount = 1 << 61 }, "document_count"},
		{"lead time beyond a year", func(in *Input) { in.LeadTime = MaxLeadTime + time.Minute }, "lead_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := standardInput()
			tt.mutate(&in)

			_, err := ComputeBreakdown(in, testRateTable())
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}
}

func TestComputeBreakdown_RejectsBrokenRateTable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RateTable)
		field  string
	}{
		{"zero base rate", func(rt *RateTable) { rt.BaseRates = map[SigningType]int64{SigningLoan: 0} }, "rates.base.loan_signing"},
		{"descending bands", func(rt *RateTable) {
			rt.Distance.Bands = []DistanceBand{{UpToMiles: 40, FeeMinor: 3000}, {UpToMiles: 25, FeeMinor: 5000}}
		}, "rates.distance.bands[1].up_to_miles"},
		{"decreasing band fee", func(rt *RateTable) {
			rt.Distance.Bands = []DistanceBand{{UpToMiles: 25, FeeMinor: 5000}, {UpToMiles: 40, FeeMinor: 3000}}
		}, "rates.distance.bands[1].fee_minor"},
		{"standard surcharge", func(rt *RateTable) { rt.PriorityFees[SLAStandard] = 100 }, "rates.priority.standard"},
		{"bad holiday", func(rt *RateTable) { rt.TimeOfDay.Holidays = []string{"12/25/2025"} }, "rates.time_of_day.holidays[0]"},
		{"no loan types", func(rt *RateTable) { rt.LoanBonuses = nil }, "rates.loan_bonus"},
		{"per document amount over cap", func(rt *RateTable) { rt.Documents.PerDocumentMinor = MaxRateMinor + 1 }, "rates.documents.per_document_minor"},
		{"per mile amount over cap", func(rt *RateTable) { rt.Distance.PerMileBeyondMinor = 1 << 62 }, "rates.distance.per_mile_beyond_minor"},
		{"unknown loan type key", func(rt *RateTable) { rt.LoanBonuses["balloon"] = 0 }, "rates.loan_bonus.balloon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := testRateTable()
			tt.mutate(&rt)

			_, err := ComputeBreakdown(standardInput(), rt)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}
}

func TestDistanceFee_Bands(t *testing.T) {
	d := testRateTable().Distance
	tests := []struct {
		miles float64
		want  int64
	}{
		{0, 0},
		{15, 0},
		{15.1, 3000},
		{25, 3000},
		{35, 5000},
		{60, 7000},
		{60.2, 7200},
		{61, 7200},
		{75, 7000 + 15*200},
	}
	for _, tt := range tests {
		fee, ok := distanceFee(tt.miles, d)
		require.True(t, ok)
		assert.Equal(t, tt.want, fee, "miles=%v", tt.miles)
	}
}

func TestDistanceFee_IsMonotonic(t *testing.T) {
	rt := testRateTable()
	in := standardInput()

	var prev int64
	for tenths := 0; tenths <= 1500; tenths++ {
		in.Miles = float64(tenths) / 10
		b, err := ComputeBreakdown(in, rt)
		require.NoError(t, err)
		require.GreaterOrEqual(t, b.Distance, prev, "distance fee dropped at %.1f miles", in.Miles)
		prev = b.Distance
	}
}

func TestComputeBreakdown_RushNeedsShortLeadTime(t *testing.T) {
	rt := testRateTable()
	in := standardInput()
	in.Rush = true

	in.LeadTime = 4 * time.Hour
	b, err := ComputeBreakdown(in, rt)
	require.NoError(t, err)
	assert.Zero(t, b.Rush, "lead time at the threshold is not a rush")

	in.LeadTime = 3*time.Hour + 59*time.Minute
	b, err = ComputeBreakdown(in, rt)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), b.Rush)

	in.Rush = false
	b, err = ComputeBreakdown(in, rt)
	require.NoError(t, err)
	assert.Zero(t, b.Rush)
}

func TestComputeBreakdown_RushAndPriorityAreAdditive(t *testing.T) {
	in := standardInput()
	in.Rush = true
	in.LeadTime = time.Hour
	in.SLATier = SLARescue

	b, err := ComputeBreakdown(in, testRateTable())
	require.NoError(t, err)
	assert.Equal(t, int64(2500), b.Rush)
	assert.Equal(t, int64(5000), b.Priority)
	assert.Equal(t, int64(12500+2500+5000), b.TotalMinorUnits)
}

func TestComputeBreakdown_TimeOfDayPrecedence(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		band TimeBand
		fee  int64
	}{
		{"weekday morning", time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC), BandNone, 0},
		{"weekday evening", time.Date(2025, 6, 11, 19, 30, 0, 0, time.UTC), BandEvening, 1500},
		{"weekday late night", time.Date(2025, 6, 11, 23, 0, 0, 0, time.UTC), BandLateNight, 3500},
		{"early morning", time.Date(2025, 6, 12, 5, 0, 0, 0, time.UTC), BandLateNight, 3500},
		{"saturday late night", time.Date(2025, 6, 14, 23, 0, 0, 0, time.UTC), BandWeekend, 2500},
		{"holiday on a thursday evening", time.Date(2025, 12, 25, 19, 0, 0, 0, time.UTC), BandHoliday, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := standardInput()
			in.ScheduledAt = tt.at

			b, err := ComputeBreakdown(in, testRateTable())
			require.NoError(t, err)
			assert.Equal(t, tt.band, b.TimeBand)
			assert.Equal(t, tt.fee, b.TimeOfDay)
		})
	}
}

func TestComputeBreakdown_UsesLocalScheduledTime(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skip("timezone database unavailable")
	}
	in := standardInput()
	// 02:00 UTC Thursday is 19:00 Wednesday in Los Angeles.
	in.ScheduledAt = time.Date(2025, 6, 12, 2, 0, 0, 0, time.UTC).In(la)

	b, err := ComputeBreakdown(in, testRateTable())
	require.NoError(t, err)
	assert.Equal(t, BandEvening, b.TimeBand)
}

func TestComputeBreakdown_SumInvariantAndDeterminism(t *testing.T) {
	rt := testRateTable()
	signing := []SigningType{SigningLoan, SigningGeneral, SigningRemote}
	loans := []LoanType{LoanPurchase, LoanRefinance, LoanHELOC, LoanReverse}
	tiers := []SLATier{SLAStandard, SLAPriority, SLAExpress, SLARescue}

	for i := 0; i < 400; i++ {
		in := Input{
			SigningType:   signing[i%len(signing)],
			Miles:         float64(i%97) * 1.3,
			Rush:          i%2 == 0,
			LeadTime:      time.Duration(i%9) * time.Hour,
			SLATier:       tiers[i%len(tiers)],
			ScheduledAt:   weekdayMorning.Add(time.Duration(i*7) * time.Hour),
			DocumentCount: i % 13,
			LoanType:      loans[i%len(loans)],
		}

		first, err := ComputeBreakdown(in, rt)
		require.NoError(t, err)
		second, err := ComputeBreakdown(in, rt)
		require.NoError(t, err)

		var items int64
		for _, li := range first.LineItems {
			assert.NotZero(t, li.AmountMinorUnits)
			items += li.AmountMinorUnits
		}
		assert.Equal(t, first.Sum(), first.TotalMinorUnits)
		assert.Equal(t, items, first.TotalMinorUnits)
		assert.Len(t, first.Descriptions, len(first.LineItems))
		assert.Equal(t, first, second)
	}
}

func TestBreakdown_JSONShape(t *testing.T) {
	b, err := ComputeBreakdown(standardInput(), testRateTable())
	require.NoError(t, err)

	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "lineItems")
	assert.Contains(t, decoded, "totalMinorUnits")
	assert.NotContains(t, decoded, "Base")
	assert.EqualValues(t, 12500, decoded["totalMinorUnits"])
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "$125.00", FormatMinor(12500, "USD"))
	assert.Equal(t, "-$5.05", FormatMinor(-505, "USD"))
	assert.Equal(t, "CAD 0.99", FormatMinor(99, "CAD"))
}

func TestComputeBreakdown_LargestInputsStayExact(t *testing.T) {
	rt := testRateTable()
	rt.Documents.PerDocumentMinor = MaxRateMinor
	rt.Distance.PerMileBeyondMinor = MaxRateMinor

	in := standardInput()
	in.DocumentCount = MaxDocuments
	in.Miles = MaxMiles

	b, err := ComputeBreakdown(in, rt)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxDocuments-5)*MaxRateMinor, b.DocumentOverage)
	assert.Equal(t, 7000+int64(MaxMiles-60)*MaxRateMinor, b.Distance)
	assert.Equal(t, b.Sum(), b.TotalMinorUnits)
	assert.Positive(t, b.TotalMinorUnits)
}

func TestCheckedArithmetic(t *testing.T) {
	sum, ok := addMinor(math.MaxInt64-1, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), sum)

	_, ok = addMinor(math.MaxInt64, 1)
	assert.False(t, ok)

	product, ok := mulMinor(1<<31, 1<<31)
	assert.True(t, ok)
	assert.Equal(t, int64(1)<<62, product)

	_, ok = mulMinor(1<<61, 9223372036854775807/(1<<61)+1)
	assert.False(t, ok)

	_, ok = mulMinor(-1, math.MinInt64)
	assert.False(t, ok)

	fee, ok := documentOverageFee(1<<61, DocumentPolicy{Included: 5, PerDocumentMinor: 2500})
	assert.False(t, ok)
	assert.Zero(t, fee)
}

func TestComputeBreakdown_LateNightFromMidnight(t *testing.T) {
	rt := testRateTable()
	rt.TimeOfDay.LateNightStartHour = 0
	rt.TimeOfDay.LateNightEndHour = 6
	require.NoError(t, rt.Validate())

	tests := []struct {
		hour int
		band TimeBand
	}{
		{0, BandLateNight},
		{5, BandLateNight},
		{6, BandNone},
		{17, BandNone},
		{18, BandEvening},
		{23, BandEvening},
	}
	for _, tt := range tests {
		in := standardInput()
		in.ScheduledAt = time.Date(2025, 6, 11, tt.hour, 30, 0, 0, time.UTC)

		b, err := ComputeBreakdown(in, rt)
		require.NoError(t, err)
		assert.Equal(t, tt.band, b.TimeBand, "hour=%d", tt.hour)
	}
}

func TestRateTable_ValidateReportsFieldsInFixedOrder(t *testing.T) {
	rt := testRateTable()
	rt.BaseRates = map[SigningType]int64{
		SigningWitness: -1,
		SigningRemote:  0,
		SigningGeneral: -5,
		SigningLoan:    0,
		"apostille":    100,
	}
	rt.LoanBonuses[LoanReverse] = -1
	rt.LoanBonuses[LoanHELOC] = -1

	for i := 0; i < 50; i++ {
		err := rt.Validate()
		require.Error(t, err)
		assert.Equal(t, "rates.base.loan_signing", apperr.FieldOf(err))
	}

	rt = testRateTable()
	rt.LoanBonuses[LoanReverse] = -1
	rt.LoanBonuses[LoanHELOC] = -1
	rt.LoanBonuses["zzz"] = 0
	rt.LoanBonuses["balloon"] = 0
	for i := 0; i < 50; i++ {
		assert.Equal(t, "rates.loan_bonus.heloc", apperr.FieldOf(rt.Validate()))
	}
}
