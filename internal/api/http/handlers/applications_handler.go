package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/panchayat-portal/internal/api/dto"
	"github.com/spec-kit/panchayat-portal/internal/auth"
	"github.com/spec-kit/panchayat-portal/internal/authz"
	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/service"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

// ApplicationsHandler manages application endpoints for all roles.
type ApplicationsHandler struct {
	service *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applicationService *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{service: applicationService}
}

// Submit POST /applications.
func (h *ApplicationsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Role != domain.RoleCitizen {
		return apperrors.NewUnauthorized("citizen required")
	}
	var req dto.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	app, err := h.service.Submit(c.Context(), principal.User, req.ServiceID, req.FormData)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": applicationSummary(app)})
}

// List GET /applications.
func (h *ApplicationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := parseApplicationQuery(c)
	apps, err := h.service.List(c.Context(), principal.Role, principal.User.ID, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ApplicationSummary, 0, len(apps))
	for i := range apps {
		items = append(items, applicationSummary(&apps[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /applications/:id.
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := applicationID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Get(c.Context(), principal.Role, principal.User.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationDetail(detail)})
}

// Update PUT /applications/:id.
func (h *ApplicationsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := applicationID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	patch := authz.Patch{
		Remarks:    req.Remarks,
		AssigneeID: req.AssignedTo,
		FormData:   req.FormData,
	}
	if req.Status != nil {
		status := domain.ApplicationStatus(strings.ToUpper(string(*req.Status)))
		if !authz.ValidStatus(status) {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": *req.Status})
		}
		patch.Status = &status
	}

	app, err := h.service.Update(c.Context(), principal.Role, principal.User.ID, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationSummary(app)})
}

func applicationID(c *fiber.Ctx) (string, error) {
	raw := c.Params("id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperrors.NewValidationError("malformed application id", map[string]any{"id": raw})
	}
	return raw, nil
}

func parseApplicationQuery(c *fiber.Ctx) service.ApplicationListFilter {
	filter := service.ApplicationListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status := domain.ApplicationStatus(strings.ToUpper(strings.TrimSpace(part)))
			if authz.ValidStatus(status) {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if serviceID := c.Query("service_id"); serviceID != "" {
		filter.ServiceID = &serviceID
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func applicationSummary(app *domain.Application) dto.ApplicationSummary {
	return dto.ApplicationSummary{
		ID:          app.ID,
		ReferenceNo: app.ReferenceNo,
		ServiceID:   app.ServiceID,
		ApplicantID: app.ApplicantID,
		AssignedTo:  app.AssigneeID,
		Status:      app.Status,
		Remarks:     app.Remarks,
		SubmittedAt: app.SubmittedAt,
		UpdatedAt:   app.UpdatedAt,
		ProcessedAt: app.ProcessedAt,
	}
}

func applicationDetail(detail *service.ApplicationDetail) dto.ApplicationDetailResponse {
	resp := dto.ApplicationDetailResponse{
		ApplicationSummary: applicationSummary(detail.Application),
		FormData:           detail.Application.FormData,
		Applicant: dto.ApplicantResponse{
			ID:    detail.Applicant.ID,
			Name:  detail.Applicant.Name,
			Email: detail.Applicant.Email,
		},
	}
	for _, entry := range detail.History {
		resp.History = append(resp.History, dto.ApplicationHistoryResponse{
			ID:            entry.ID,
			ChangeType:    entry.ChangeType,
			ChangedByID:   entry.ChangedByID,
			ChangedByRole: entry.ChangedByRole,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return resp
}
