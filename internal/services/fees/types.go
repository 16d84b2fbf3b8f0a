package fees

import "time"

// SigningType selects the base rate.
type SigningType string

const (
	SigningLoan    SigningType = "loan_signing"
	SigningGeneral SigningType = "general_notary"
	SigningRemote  SigningType = "remote_online"
	SigningWitness SigningType = "witness_only"
)

// LoanType classifies the loan package being signed.
type LoanType string

const (
	LoanNone       LoanType = "none"
	LoanPurchase   LoanType = "purchase"
	LoanRefinance  LoanType = "refinance"
	LoanHELOC      LoanType = "heloc"
	LoanReverse    LoanType = "reverse_mortgage"
	LoanCommercial LoanType = "commercial"
)

// SLATier is the client-selected confirmation-speed commitment.
type SLATier string

const (
	SLAStandard SLATier = "standard" // no commitment
	SLAPriority SLATier = "priority" // 60-minute confirmation
	SLAExpress  SLATier = "express"  // 15-minute confirmation
	SLARescue   SLATier = "rescue"   // 3-minute confirmation
)

// SigningTypes lists every signing type the rate table may price.
func SigningTypes() []SigningType {
	return []SigningType{SigningLoan, SigningGeneral, SigningRemote, SigningWitness}
}

func LoanTypes() []LoanType {
	return []LoanType{LoanNone, LoanPurchase, LoanRefinance, LoanHELOC, LoanReverse, LoanCommercial}
}

func SLATiers() []SLATier {
	return []SLATier{SLAStandard, SLAPriority, SLAExpress, SLARescue}
}

// TimeBand is the time-of-day surcharge band an assignment falls in.
type TimeBand string

const (
	BandNone      TimeBand = ""
	BandEvening   TimeBand = "evening"
	BandLateNight TimeBand = "late_night"
	BandWeekend   TimeBand = "weekend"
	BandHoliday   TimeBand = "holiday"
)

// Input is everything the calculator needs to price one assignment.
type Input struct {
	SigningType SigningType `json:"signing_type"`
	Miles       float64     `json:"miles"`
	Rush        bool        `json:"rush"`
	// LeadTime is the gap between booking and the scheduled time.
	LeadTime      time.Duration `json:"lead_time"`
	SLATier       SLATier       `json:"sla_tier"`
	ScheduledAt   time.Time     `json:"scheduled_at"`
	DocumentCount int           `json:"document_count"`
	LoanType      LoanType      `json:"loan_type"`
}

// LineKind identifies a breakdown step. The declaration order is the canonical
// order of the line items.
type LineKind int

const (
	LineBase LineKind = iota
	LineDistance
	LineRush
	LinePriority
	LineTimeOfDay
	LineDocumentOverage
	LineLoanBonus
)

var lineCodes = [...]string{
	LineBase:            "base",
	LineDistance:        "distance",
	LineRush:            "rush",
	LinePriority:        "priority",
	LineTimeOfDay:       "time_of_day",
	LineDocumentOverage: "document_overage",
	LineLoanBonus:       "loan_bonus",
}

func (k LineKind) String() string {
	if k < 0 || int(k) >= len(lineCodes) {
		return "unknown"
	}
	return lineCodes[k]
}

// LineItem is one non-zero step of a breakdown.
type LineItem struct {
	Code             string `json:"code"`
	Label            string `json:"label"`
	AmountMinorUnits int64  `json:"amountMinorUnits"`
}

// Breakdown is the authoritative, itemized price of an assignment. Consumers
// must not reorder, re-sum or round it.
type Breakdown struct {
	Base            int64    `json:"-"`
	Distance        int64    `json:"-"`
	Rush            int64    `json:"-"`
	Priority        int64    `json:"-"`
	TimeOfDay       int64    `json:"-"`
	DocumentOverage int64    `json:"-"`
	LoanBonus       int64    `json:"-"`
	TimeBand        TimeBand `json:"timeBand,omitempty"`

	LineItems       []LineItem `json:"lineItems"`
	TotalMinorUnits int64      `json:"totalMinorUnits"`
	Descriptions    []string   `json:"descriptions"`
	Currency        string     `json:"currency"`
}

// Amount returns the amount of a single step, zero or not.
func (b Breakdown) Amount(k LineKind) int64 {
	switch k {
	case LineBase:
		return b.Base
	case LineDistance:
		return b.Distance
	case LineRush:
		return b.Rush
	case LinePriority:
		return b.Priority
	case LineTimeOfDay:
		return b.TimeOfDay
	case LineDocumentOverage:
		return b.DocumentOverage
	case LineLoanBonus:
		return b.LoanBonus
	}
	return 0
}

// Sum adds every step. It always equals TotalMinorUnits for a breakdown
// produced by ComputeBreakdown.
func (b Breakdown) Sum() int64 {
	var total int64
	for k := LineBase; k <= LineLoanBonus; k++ {
		total += b.Amount(k)
	}
	return total
}
