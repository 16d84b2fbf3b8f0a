package assignment

import (
	"time"

	"signwise/internal/models"
	"signwise/internal/services/fees"
	"signwise/internal/services/tiering"

	"github.com/google/uuid"
)

// ScheduleRequest books a priced signing for a client with a vendor.
type ScheduleRequest struct {
	ClientID string     `json:"client_id"`
	VendorID string     `json:"vendor_id"`
	Input    fees.Input `json:"input"`
}

// CompletionReport is what the vendor reports when the signing is done.
type CompletionReport struct {
	// FirstPass is true when the package funded without corrections.
	FirstPass bool `json:"first_pass"`
}

// CompletionResult summarizes everything a completion changed.
type CompletionResult struct {
	AssignmentID  uuid.UUID `json:"assignment_id"`
	Billable      bool      `json:"billable"`
	BillingStatus string    `json:"billing_status"`
	InvoiceItemID string    `json:"invoice_item_id,omitempty"`
	CreditsLeft   int       `json:"pilot_credits_remaining"`
	PilotMode     bool      `json:"pilot_mode"`
	// VendorTier is nil when the vendor could not be reclassified. The
	// completion and its billing still stand.
	VendorTier    *tiering.Classification `json:"vendor_tier"`
	LedgerAnomaly bool                    `json:"ledger_anomaly"`
	CompletedAt   time.Time               `json:"completed_at"`
	TotalMinor    int64                   `json:"total_minor_units"`

	Assignment *models.Assignment `json:"-"`
}
