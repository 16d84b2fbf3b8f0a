package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	AssignmentScheduled = "scheduled"
	AssignmentCompleted = "completed"
	AssignmentFailed    = "failed"
)

const (
	BillingNone     = "none"
	BillingPilot    = "pilot"
	BillingInvoiced = "invoiced"
	// BillingPending marks a billable signing whose invoice could not be created.
	BillingPending = "pending"
)

// Assignment is a scheduled signing with the price it was booked at. The
// breakdown is stored as quoted and never recomputed.
type Assignment struct {
	gorm.Model
	PublicID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ClientID        string    `gorm:"index;not null"`
	VendorID        string    `gorm:"index;not null"`
	Status          string    `gorm:"index;default:'scheduled'"`
	SigningType     string    `gorm:"not null"`
	LoanType        string
	SLATier         string
	ScheduledAt     time.Time
	Currency        string         `gorm:"default:'USD'"`
	TotalMinorUnits int64          `gorm:"not null"`
	LineItems       LineItems      `gorm:"type:jsonb"`
	Descriptions    pq.StringArray `gorm:"type:text[]"`
	BillingStatus   string         `gorm:"default:'none'"`
	InvoiceItemID   string
	CompletedAt     *time.Time
}
