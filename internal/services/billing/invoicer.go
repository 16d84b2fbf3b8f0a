// Package billing turns billable signings into invoice items.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"signwise/internal/validation"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/invoiceitem"
)

// ErrNoCustomer is returned when the client has no billing customer on file.
var ErrNoCustomer = errors.New("client has no billing customer")

// idempotencyNamespace scopes the invoice idempotency keys derived from
// assignment ids.
var idempotencyNamespace = uuid.MustParse("6f1c2a8e-4b7d-5e90-a1c3-2d4e6f8a0b1c")

// InvoiceRequest is one billable signing.
type InvoiceRequest struct {
	AssignmentID     string
	ClientID         string
	CustomerID       string
	AmountMinorUnits int64
	Currency         string
	Description      string
}

func (r InvoiceRequest) validate() error {
	v := validation.New()
	v.Required("assignment_id", r.AssignmentID)
	v.Required("client_id", r.ClientID)
	v.Positive("amount_minor_units", r.AmountMinorUnits)
	v.Required("currency", r.Currency)
	return v.Err()
}

// IdempotencyKey is stable per assignment, so a retried invoice never bills
// the same signing twice.
func (r InvoiceRequest) IdempotencyKey() string {
	return uuid.NewSHA1(idempotencyNamespace, []byte("invoice:"+r.AssignmentID)).String()
}

// Invoicer bills a signing and returns the invoice item id.
type Invoicer interface {
	Invoice(ctx context.Context, req InvoiceRequest) (string, error)
}

// StripeInvoicer adds a pending invoice item to the client's Stripe customer.
// Stripe rolls pending items into the customer's next invoice.
type StripeInvoicer struct {
	create func(*stripe.InvoiceItemParams) (*stripe.InvoiceItem, error)
	logger *slog.Logger
}

func NewStripeInvoicer(secretKey string, logger *slog.Logger) *StripeInvoicer {
	if logger == nil {
		logger = slog.Default()
	}
	client := &invoiceitem.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	return &StripeInvoicer{create: client.New, logger: logger}
}

func (s *StripeInvoicer) Invoice(ctx context.Context, req InvoiceRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	if req.CustomerID == "" {
		return "", ErrNoCustomer
	}

	params := &stripe.InvoiceItemParams{
		Customer:    stripe.String(req.CustomerID),
		Amount:      stripe.Int64(req.AmountMinorUnits),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey())
	params.AddMetadata("assignment_id", req.AssignmentID)
	params.AddMetadata("client_id", req.ClientID)

	item, err := s.create(params)
	if err != nil {
		return "", fmt.Errorf("stripe invoice item failed: %w", err)
	}
	s.logger.Info("invoice item created",
		"assignment_id", req.AssignmentID, "client_id", req.ClientID,
		"invoice_item_id", item.ID, "amount_minor_units", req.AmountMinorUnits)
	return item.ID, nil
}

// NoopInvoicer records billable signings in the log only. It is used when no
// Stripe key is configured.
type NoopInvoicer struct {
	Logger *slog.Logger
}

func (n *NoopInvoicer) Invoice(ctx context.Context, req InvoiceRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	if n.Logger != nil {
		n.Logger.Info("billing disabled, signing not invoiced",
			"assignment_id", req.AssignmentID, "amount_minor_units", req.AmountMinorUnits)
	}
	return "", nil
}
