package engine

import (
	"time"

	"signwise/internal/services/fees"
	"signwise/internal/services/pilot"
	"signwise/internal/services/tiering"
	"signwise/internal/services/vendor"
)

// Default returns the reference configuration shipped in config/engine.yaml.
func Default() *Config {
	return &Config{
		Rates: fees.RateTable{
			Currency: "USD",
			BaseRates: map[fees.SigningType]int64{
				fees.SigningLoan:    12500,
				fees.SigningGeneral: 5000,
				fees.SigningRemote:  7500,
				fees.SigningWitness: 3500,
			},
			Distance: fees.DistanceSchedule{
				IncludedMiles: 15,
				Bands: []fees.DistanceBand{
					{UpToMiles: 25, FeeMinor: 3000},
					{UpToMiles: 40, FeeMinor: 5000},
					{UpToMiles: 60, FeeMinor: 7000},
				},
				PerMileBeyondMinor: 200,
			},
			Rush: fees.RushPolicy{Threshold: 4 * time.Hour, FeeMinor: 2500},
			PriorityFees: map[fees.SLATier]int64{
				fees.SLAStandard: 0,
				fees.SLAPriority: 1500,
				fees.SLAExpress:  3000,
				fees.SLARescue:   5000,
			},
			TimeOfDay: fees.TimeOfDayPolicy{
				EveningStartHour:   18,
				LateNightStartHour: 21,
				LateNightEndHour:   6,
				EveningFeeMinor:    1500,
				LateNightFeeMinor:  3500,
				WeekendFeeMinor:    2500,
				HolidayFeeMinor:    5000,
				Holidays:           []string{"2025-12-25", "2026-01-01", "2026-07-04", "2026-12-25"},
			},
			Documents: fees.DocumentPolicy{Included: 5, PerDocumentMinor: 500},
			LoanBonuses: map[fees.LoanType]int64{
				fees.LoanNone:       0,
				fees.LoanPurchase:   0,
				fees.LoanRefinance:  0,
				fees.LoanHELOC:      1000,
				fees.LoanReverse:    2500,
				fees.LoanCommercial: 5000,
			},
		},
		Tiers: tiering.Thresholds{
			ScoreFloor: 0,
			Silver:     tiering.Requirement{MinScore: 50, MinCompleted: 10, MinFirstPassRate: 0.85},
			Gold:       tiering.Requirement{MinScore: 70, MinCompleted: 50, MinFirstPassRate: 0.90},
			Elite:      tiering.Requirement{MinScore: 90, MinCompleted: 100, MinFirstPassRate: 0.97},
		},
		Pilot: pilot.Config{Allotment: pilot.DefaultAllotment, MaxAttempts: 64},
		Scoring: vendor.Policy{
			CompletionPoints:  1,
			FirstPassBonus:    1,
			CorrectionPenalty: 2,
			FailurePenalty:    5,
			ScoreFloor:        0,
			MaxScore:          100,
		},
	}
}
