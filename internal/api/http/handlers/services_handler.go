package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/panchayat-portal/internal/api/dto"
	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/service"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

// ServicesHandler exposes the service catalog. Listing active services is
// public; everything else is officer-only and guarded at the router.
type ServicesHandler struct {
	catalog *service.CatalogService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(catalog *service.CatalogService) *ServicesHandler {
	return &ServicesHandler{catalog: catalog}
}

// ListActive GET /services.
func (h *ServicesHandler) ListActive(c *fiber.Ctx) error {
	services, err := h.catalog.ListActive(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponses(services)})
}

// ListAll GET /admin/services.
func (h *ServicesHandler) ListAll(c *fiber.Ctx) error {
	services, err := h.catalog.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponses(services)})
}

// Get GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	id, err := serviceID(c)
	if err != nil {
		return err
	}
	svc, err := h.catalog.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ServiceFromDomain(svc)})
}

// Create POST /services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	svc, err := h.catalog.Create(c.Context(), serviceInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ServiceFromDomain(svc)})
}

// Update PUT /services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	id, err := serviceID(c)
	if err != nil {
		return err
	}
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	svc, err := h.catalog.Update(c.Context(), id, serviceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ServiceFromDomain(svc)})
}

// Delete DELETE /services/:id.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	id, err := serviceID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func serviceID(c *fiber.Ctx) (string, error) {
	raw := c.Params("id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperrors.NewValidationError("malformed service id", map[string]any{"id": raw})
	}
	return raw, nil
}

func serviceInput(req dto.ServiceRequest) service.ServiceInput {
	return service.ServiceInput{
		Name:           req.Name,
		Description:    req.Description,
		Requirements:   req.Requirements,
		ProcessingTime: req.ProcessingTime,
		Category:       req.Category,
		IsActive:       req.IsActive,
	}
}

func serviceResponses(services []domain.Service) []dto.ServiceResponse {
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, dto.ServiceFromDomain(&services[i]))
	}
	return items
}
