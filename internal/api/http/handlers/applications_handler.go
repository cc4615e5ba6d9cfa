package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/service"
)

// ApplicationsHandler manages admin review of provider applications.
type ApplicationsHandler struct {
	approvals *service.ApprovalService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(approvalService *service.ApprovalService) *ApplicationsHandler {
	return &ApplicationsHandler{approvals: approvalService}
}

// ListPending GET /providers/applications.
func (h *ApplicationsHandler) ListPending(c *fiber.Ctx) error {
	profiles, err := h.approvals.ListPending(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, *profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Approve POST /providers/applications/:id/approve.
func (h *ApplicationsHandler) Approve(c *fiber.Ctx) error {
	admin, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	profile, err := h.approvals.Approve(c.Context(), c.Params("id"), admin)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// Reject POST /providers/applications/:id/reject.
func (h *ApplicationsHandler) Reject(c *fiber.Ctx) error {
	admin, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	profile, err := h.approvals.Reject(c.Context(), c.Params("id"), admin)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}
