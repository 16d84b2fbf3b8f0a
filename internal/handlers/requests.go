package handlers

import (
	"fmt"
	"time"

	apperr "signwise/internal/errors"
	"signwise/internal/services/fees"
)

const maxLeadTimeMinutes = int64(fees.MaxLeadTime / time.Minute)

// feeInputRequest is the wire form of a fee input. Lead time travels in
// minutes and the scheduled time as RFC 3339 with the signing's local offset.
type feeInputRequest struct {
	SigningType     string    `json:"signing_type"`
	Miles           float64   `json:"miles"`
	Rush            bool      `json:"rush"`
	LeadTimeMinutes int64     `json:"lead_time_minutes"`
	SLATier         string    `json:"sla_tier"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DocumentCount   int       `json:"document_count"`
	LoanType        string    `json:"loan_type"`
}

// toInput rejects lead times that cannot be represented as a duration before
// converting. Everything else is left to the calculator's validation.
func (r feeInputRequest) toInput() (fees.Input, error) {
	if r.LeadTimeMinutes > maxLeadTimeMinutes || r.LeadTimeMinutes < -maxLeadTimeMinutes {
		return fees.Input{}, apperr.Validation("lead_time_minutes",
			fmt.Sprintf("lead time must not exceed %d minutes", maxLeadTimeMinutes))
	}
	in := fees.Input{
		SigningType:   fees.SigningType(r.SigningType),
		Miles:         r.Miles,
		Rush:          r.Rush,
		LeadTime:      time.Duration(r.LeadTimeMinutes) * time.Minute,
		SLATier:       fees.SLATier(r.SLATier),
		ScheduledAt:   r.ScheduledAt,
		DocumentCount: r.DocumentCount,
		LoanType:      fees.LoanType(r.LoanType),
	}
	if in.SLATier == "" {
		in.SLATier = fees.SLAStandard
	}
	if in.LoanType == "" {
		in.LoanType = fees.LoanNone
	}
	return in, nil
}

type scheduleRequest struct {
	ClientID string          `json:"client_id"`
	VendorID string          `json:"vendor_id"`
	Fee      feeInputRequest `json:"fee"`
}

type completeRequest struct {
	FirstPass bool `json:"first_pass"`
}

type createVendorRequest struct {
	VendorID       string   `json:"vendor_id"`
	Name           string   `json:"name"`
	Certifications []string `json:"certifications"`
}

type registerClientRequest struct {
	ClientID         string `json:"client_id"`
	Name             string `json:"name"`
	StripeCustomerID string `json:"stripe_customer_id"`
}

type provisionPilotRequest struct {
	StripeCustomerID string `json:"stripe_customer_id"`
}
