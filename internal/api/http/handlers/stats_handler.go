package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/panchayat-portal/internal/service"
)

// StatsHandler serves the officer dashboard summary.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Dashboard GET /admin/stats.
func (h *StatsHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.stats.Dashboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"applications_by_status": stats.ApplicationsByStatus,
		"users_by_role":          stats.UsersByRole,
		"service_count":          stats.ServiceCount,
	}})
}
