package handlers

import (
	"time"

	"signwise/internal/models"
	"signwise/internal/repositories"
	"signwise/internal/services/assignment"
	"signwise/internal/services/fees"
	"signwise/internal/utils/pagination"
	"signwise/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AssignmentHandler struct {
	service assignment.Service
}

func NewAssignmentHandler(service assignment.Service) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Quote prices an assignment without booking it.
func (h *AssignmentHandler) Quote(c *fiber.Ctx) error {
	var req feeInputRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	in, err := req.toInput()
	if err != nil {
		return response.FromError(c, err)
	}
	breakdown, err := h.service.Quote(in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Quote computed", breakdown)
}

func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	in, err := req.Fee.toInput()
	if err != nil {
		return response.FromError(c, err)
	}
	a, err := h.service.Schedule(c.UserContext(), assignment.ScheduleRequest{
		ClientID: req.ClientID,
		VendorID: req.VendorID,
		Input:    in,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Assignment scheduled", assignmentView(a))
}

func (h *AssignmentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.ValidationError(c, "id", "Invalid assignment ID")
	}

	a, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assignment retrieved", assignmentView(a))
}

// List pages through assignments filtered by client, vendor and status.
func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := repositories.AssignmentFilter{
		ClientID:      c.Query("client_id"),
		VendorID:      c.Query("vendor_id"),
		Status:        c.Query("status"),
		BillingStatus: c.Query("billing_status"),
	}

	items, total, err := h.service.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total

	views := make([]fiber.Map, 0, len(items))
	for i := range items {
		views = append(views, assignmentView(&items[i]))
	}
	return c.JSON(pagination.Response(p, views))
}

func (h *AssignmentHandler) Complete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.ValidationError(c, "id", "Invalid assignment ID")
	}

	var req completeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	result, err := h.service.Complete(c.UserContext(), id, assignment.CompletionReport{FirstPass: req.FirstPass})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assignment completed", result)
}

func (h *AssignmentHandler) Fail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.ValidationError(c, "id", "Invalid assignment ID")
	}

	classification, err := h.service.Fail(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assignment marked failed", fiber.Map{
		"assignment_id": id,
		"vendor_tier":   classification,
	})
}

func assignmentView(a *models.Assignment) fiber.Map {
	return fiber.Map{
		"id":              a.PublicID,
		"client_id":       a.ClientID,
		"vendor_id":       a.VendorID,
		"status":          a.Status,
		"signing_type":    a.SigningType,
		"loan_type":       a.LoanType,
		"sla_tier":        a.SLATier,
		"scheduled_at":    a.ScheduledAt.Format(time.RFC3339),
		"currency":        a.Currency,
		"lineItems":       a.LineItems,
		"totalMinorUnits": a.TotalMinorUnits,
		"descriptions":    a.Descriptions,
		"billing_status":  a.BillingStatus,
		"formatted_total": fees.FormatMinor(a.TotalMinorUnits, a.Currency),
		"invoice_item_id": a.InvoiceItemID,
		"completed_at":    a.CompletedAt,
	}
}
