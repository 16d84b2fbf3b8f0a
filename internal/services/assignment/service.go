// Package assignment sequences the engine components over an assignment's
// lifecycle: it prices on scheduling, meters pilot credits and bills on
// completion, and feeds the outcome back into the vendor's tier.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperr "signwise/internal/errors"
	"signwise/internal/models"
	"signwise/internal/repositories"
	"signwise/internal/services/billing"
	"signwise/internal/services/fees"
	"signwise/internal/services/pilot"
	"signwise/internal/services/tiering"
	"signwise/internal/services/vendor"
	"signwise/internal/validation"

	"github.com/google/uuid"
)

type Service interface {
	Quote(in fees.Input) (fees.Breakdown, error)
	Schedule(ctx context.Context, req ScheduleRequest) (*models.Assignment, error)
	Complete(ctx context.Context, id uuid.UUID, report CompletionReport) (*CompletionResult, error)
	Fail(ctx context.Context, id uuid.UUID) (tiering.Classification, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	List(ctx context.Context, filter repositories.AssignmentFilter, offset, limit int) ([]models.Assignment, int64, error)
}

// Ledger is the part of the pilot ledger the workflow needs.
type Ledger interface {
	RecordCompletion(ctx context.Context, clientID string) (pilot.Outcome, error)
}

// Deps are the collaborators of the assignment service.
type Deps struct {
	Assignments repositories.AssignmentRepository
	Clients     repositories.ClientRepository
	Vendors     repositories.VendorRepository
	Ledger      Ledger
	VendorSvc   vendor.Service
	Invoicer    billing.Invoicer
	Rates       fees.RateTable
	Logger      *slog.Logger
	Now         func() time.Time
}

type service struct {
	Deps
}

// NewService creates a new assignment service
func NewService(deps Deps) Service {
	if deps.Assignments == nil {
		panic("assignment repository is required")
	}
	if deps.Clients == nil {
		panic("client repository is required")
	}
	if deps.Vendors == nil {
		panic("vendor repository is required")
	}
	if deps.Ledger == nil {
		panic("ledger is required")
	}
	if deps.VendorSvc == nil {
		panic("vendor service is required")
	}
	if deps.Invoicer == nil {
		deps.Invoicer = &billing.NoopInvoicer{Logger: deps.Logger}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{Deps: deps}
}

func (s *service) Quote(in fees.Input) (fees.Breakdown, error) {
	return fees.ComputeBreakdown(in, s.Rates)
}

func (s *service) Schedule(ctx context.Context, req ScheduleRequest) (*models.Assignment, error) {
	v := validation.New()
	v.Required("client_id", req.ClientID)
	v.Required("vendor_id", req.VendorID)
	if err := v.Err(); err != nil {
		return nil, err
	}

	b, err := fees.ComputeBreakdown(req.Input, s.Rates)
	if err != nil {
		return nil, err
	}

	if _, err := s.Clients.GetByClientID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	if _, err := s.Vendors.GetByVendorID(ctx, req.VendorID); err != nil {
		return nil, err
	}

	a := &models.Assignment{
		PublicID:        uuid.New(),
		ClientID:        req.ClientID,
		VendorID:        req.VendorID,
		Status:          models.AssignmentScheduled,
		SigningType:     string(req.Input.SigningType),
		LoanType:        string(req.Input.LoanType),
		SLATier:         string(req.Input.SLATier),
		ScheduledAt:     req.Input.ScheduledAt,
		Currency:        b.Currency,
		TotalMinorUnits: b.TotalMinorUnits,
		LineItems:       lineItemsOf(b),
		Descriptions:    b.Descriptions,
		BillingStatus:   models.BillingNone,
	}
	if err := s.Assignments.Create(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.Info("assignment scheduled",
		"assignment_id", a.PublicID, "client_id", a.ClientID, "vendor_id", a.VendorID,
		"total_minor_units", a.TotalMinorUnits)
	return a, nil
}

// Complete claims the completion first, so a second call for the same
// assignment is a conflict and never consumes a second pilot credit. If the
// pilot ledger cannot be updated the claim is released again and the caller
// may retry. Once the ledger has been charged the completion stands.
func (s *service) Complete(ctx context.Context, id uuid.UUID, report CompletionReport) (*CompletionResult, error) {
	a, err := s.Assignments.GetByPublicID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != models.AssignmentScheduled {
		return nil, apperr.Conflict(fmt.Sprintf("assignment %s is already %s", id, a.Status))
	}

	now := s.Now()
	if err := s.Assignments.Transition(ctx, id, models.AssignmentScheduled, models.AssignmentCompleted, now); err != nil {
		return nil, err
	}

	out, err := s.Ledger.RecordCompletion(ctx, a.ClientID)
	if err != nil {
		s.release(ctx, id, models.AssignmentCompleted)
		return nil, fmt.Errorf("failed to record pilot completion: %w", err)
	}

	result := &CompletionResult{
		AssignmentID:  id,
		Billable:      out.Billable,
		CreditsLeft:   out.Entry.CreditsRemaining,
		PilotMode:     out.Entry.PilotMode,
		LedgerAnomaly: out.Anomaly != nil,
		CompletedAt:   now,
		TotalMinor:    a.TotalMinorUnits,
		Assignment:    a,
	}

	result.BillingStatus, result.InvoiceItemID = s.bill(ctx, a, out.Billable)
	if err := s.Assignments.UpdateBilling(ctx, id, result.BillingStatus, result.InvoiceItemID); err != nil {
		s.Logger.Error("failed to store billing status",
			"assignment_id", id, "billing_status", result.BillingStatus, "error", err)
	}

	outcome := vendor.OutcomeCorrected
	if report.FirstPass {
		outcome = vendor.OutcomeFirstPass
	}
	if c, err := s.VendorSvc.Reclassify(ctx, a.VendorID, outcome); err != nil {
		s.Logger.Error("failed to reclassify vendor after completion",
			"assignment_id", id, "vendor_id", a.VendorID, "outcome", string(outcome), "error", err)
	} else {
		result.VendorTier = &c
	}

	a.Status = models.AssignmentCompleted
	a.CompletedAt = &now
	a.BillingStatus = result.BillingStatus
	a.InvoiceItemID = result.InvoiceItemID
	return result, nil
}

// release puts a claimed assignment back to scheduled.
func (s *service) release(ctx context.Context, id uuid.UUID, from string) {
	if err := s.Assignments.Transition(ctx, id, from, models.AssignmentScheduled, s.Now()); err != nil {
		s.Logger.Error("failed to release assignment claim",
			"assignment_id", id, "status", from, "error", err)
	}
}

// bill never fails the completion. A signing whose invoice cannot be created
// is left pending for follow-up.
func (s *service) bill(ctx context.Context, a *models.Assignment, billable bool) (string, string) {
	if !billable {
		return models.BillingPilot, ""
	}

	req := billing.InvoiceRequest{
		AssignmentID:     a.PublicID.String(),
		ClientID:         a.ClientID,
		AmountMinorUnits: a.TotalMinorUnits,
		Currency:         a.Currency,
		Description:      fmt.Sprintf("%s signing on %s", a.SigningType, a.ScheduledAt.Format("2006-01-02")),
	}
	client, err := s.Clients.GetByClientID(ctx, a.ClientID)
	if err != nil {
		s.Logger.Error("failed to load client for billing", "assignment_id", a.PublicID, "error", err)
		return models.BillingPending, ""
	}
	req.CustomerID = client.StripeCustomerID

	invoiceID, err := s.Invoicer.Invoice(ctx, req)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, billing.ErrNoCustomer) {
			level = slog.LevelWarn
		}
		s.Logger.Log(ctx, level, "invoice failed, billing left pending",
			"assignment_id", a.PublicID, "client_id", a.ClientID, "error", err)
		return models.BillingPending, ""
	}
	return models.BillingInvoiced, invoiceID
}

func (s *service) Fail(ctx context.Context, id uuid.UUID) (tiering.Classification, error) {
	a, err := s.Assignments.GetByPublicID(ctx, id)
	if err != nil {
		return tiering.Classification{}, err
	}
	if a.Status != models.AssignmentScheduled {
		return tiering.Classification{}, apperr.Conflict(fmt.Sprintf("assignment %s is already %s", id, a.Status))
	}
	if err := s.Assignments.Transition(ctx, id, models.AssignmentScheduled, models.AssignmentFailed, s.Now()); err != nil {
		return tiering.Classification{}, err
	}

	c, err := s.VendorSvc.Reclassify(ctx, a.VendorID, vendor.OutcomeFailed)
	if err != nil {
		s.release(ctx, id, models.AssignmentFailed)
		return tiering.Classification{}, fmt.Errorf("failed to reclassify vendor: %w", err)
	}
	s.Logger.Info("assignment failed", "assignment_id", id, "vendor_id", a.VendorID, "vendor_tier", c.Tier.String())
	return c, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return s.Assignments.GetByPublicID(ctx, id)
}

func (s *service) List(ctx context.Context, filter repositories.AssignmentFilter, offset, limit int) ([]models.Assignment, int64, error) {
	v := validation.New()
	v.Check(oneOf(filter.Status, models.AssignmentScheduled, models.AssignmentCompleted, models.AssignmentFailed),
		"status", "unknown assignment status "+filter.Status)
	v.Check(oneOf(filter.BillingStatus, models.BillingNone, models.BillingPilot, models.BillingInvoiced, models.BillingPending),
		"billing_status", "unknown billing status "+filter.BillingStatus)
	v.NonNegative("offset", int64(offset))
	v.Positive("limit", int64(limit))
	if err := v.Err(); err != nil {
		return nil, 0, err
	}
	return s.Assignments.List(ctx, filter, offset, limit)
}

// oneOf reports whether value is empty or one of allowed.
func oneOf(value string, allowed ...string) bool {
	if value == "" {
		return true
	}
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func lineItemsOf(b fees.Breakdown) models.LineItems {
	items := make(models.LineItems, 0, len(b.LineItems))
	for _, li := range b.LineItems {
		items = append(items, models.LineItem{
			Code:             li.Code,
			Label:            li.Label,
			AmountMinorUnits: li.AmountMinorUnits,
		})
	}
	return items
}
