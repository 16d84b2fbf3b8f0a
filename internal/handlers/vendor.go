package handlers

import (
	"signwise/internal/models"
	"signwise/internal/repositories"
	"signwise/internal/services/vendor"
	"signwise/internal/utils/response"
	"signwise/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
)

type VendorHandler struct {
	service vendor.Service
	repo    repositories.VendorRepository
}

func NewVendorHandler(service vendor.Service, repo repositories.VendorRepository) *VendorHandler {
	return &VendorHandler{service: service, repo: repo}
}

func (h *VendorHandler) Create(c *fiber.Ctx) error {
	var req createVendorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("vendor_id", req.VendorID)
	v.MaxLength("vendor_id", req.VendorID, validation.MaxVendorIDLength)
	for _, cert := range req.Certifications {
		v.Check(cert == models.CertificationCommission || cert == models.CertificationRON,
			"certifications", "unknown certification "+cert)
	}
	if err := v.Err(); err != nil {
		return response.FromError(c, err)
	}

	vendorModel := &models.Vendor{
		VendorID:       req.VendorID,
		Name:           req.Name,
		Certifications: pq.StringArray(req.Certifications),
	}
	if err := h.repo.Create(c.UserContext(), vendorModel); err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Vendor created", fiber.Map{
		"vendor_id":      vendorModel.VendorID,
		"name":           vendorModel.Name,
		"certifications": vendorModel.Certifications,
	})
}

// GetTier returns the vendor's current tier and what it lacks for the next one.
func (h *VendorHandler) GetTier(c *fiber.Ctx) error {
	vendorID := c.Params("id")

	classification, err := h.service.Tier(c.UserContext(), vendorID)
	if err != nil {
		return response.FromError(c, err)
	}

	data := fiber.Map{
		"vendor_id": vendorID,
		"tier":      classification.Tier,
		"score":     classification.Score,
	}
	gap, ok, err := h.service.NextTier(c.UserContext(), vendorID)
	if err != nil {
		return response.FromError(c, err)
	}
	if ok {
		data["next_tier"] = gap
	}
	return response.Success(c, "Vendor tier retrieved", data)
}
