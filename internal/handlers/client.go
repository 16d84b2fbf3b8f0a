package handlers

import (
	"context"

	"signwise/internal/models"
	"signwise/internal/repositories"
	"signwise/internal/services/pilot"
	"signwise/internal/utils/response"
	"signwise/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PilotLedger is the part of the pilot ledger the HTTP layer drives.
type PilotLedger interface {
	Provision(ctx context.Context, clientID string) (pilot.Entry, error)
	Entry(ctx context.Context, clientID string) (pilot.Entry, error)
	ConvertToFullClient(ctx context.Context, clientID string) (pilot.Entry, error)
}

type ClientHandler struct {
	ledger  PilotLedger
	clients repositories.ClientRepository
}

func NewClientHandler(ledger PilotLedger, clients repositories.ClientRepository) *ClientHandler {
	return &ClientHandler{ledger: ledger, clients: clients}
}

// Register adds a client billed from its first signing.
func (h *ClientHandler) Register(c *fiber.Ctx) error {
	var req registerClientRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("client_id", req.ClientID)
	v.MaxLength("client_id", req.ClientID, validation.MaxClientIDLength)
	if err := v.Err(); err != nil {
		return response.FromError(c, err)
	}

	client := &models.Client{
		ClientID:         req.ClientID,
		Name:             req.Name,
		StripeCustomerID: req.StripeCustomerID,
	}
	if err := h.clients.Register(c.UserContext(), client); err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Client registered", fiber.Map{
		"client_id":  client.ClientID,
		"name":       client.Name,
		"pilot_mode": false,
	})
}

// ProvisionPilot creates a client in pilot mode with the configured allotment.
func (h *ClientHandler) ProvisionPilot(c *fiber.Ctx) error {
	var req provisionPilotRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	clientID := c.Params("id")
	entry, err := h.ledger.Provision(c.UserContext(), clientID)
	if err != nil {
		return response.FromError(c, err)
	}
	if req.StripeCustomerID != "" {
		if err := h.clients.SetStripeCustomer(c.UserContext(), clientID, req.StripeCustomerID); err != nil {
			return response.FromError(c, err)
		}
	}
	return response.Created(c, "Pilot provisioned", entry)
}

func (h *ClientHandler) GetPilot(c *fiber.Ctx) error {
	entry, err := h.ledger.Entry(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Pilot ledger retrieved", entry)
}

func (h *ClientHandler) ConvertPilot(c *fiber.Ctx) error {
	entry, err := h.ledger.ConvertToFullClient(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Client converted to full client", entry)
}
