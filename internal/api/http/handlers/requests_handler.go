package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// RequestsHandler manages the service request workflow endpoints.
type RequestsHandler struct {
	requests *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requestService}
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	created, err := h.requests.Create(c.Context(), actor, req.ServiceID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(created)})
}

// List GET /requests. Requesters see requests they sent, providers see
// requests they received, admins see everything.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	input := service.RequestListInput{}
	if status, ok, err := parseStatusQuery(c); err != nil {
		return err
	} else if ok {
		input.Status = &status
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize

	requests, err := h.requests.List(c.Context(), actor, input)
	if err != nil {
		return err
	}
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, *requestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	request, err := h.requests.Get(c.Context(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Accept POST /requests/:id/accept.
func (h *RequestsHandler) Accept(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	request, err := h.requests.Accept(c.Context(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Reject POST /requests/:id/reject.
func (h *RequestsHandler) Reject(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	request, err := h.requests.Reject(c.Context(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// parseStatusQuery reads an optional status filter. Unknown values are
// rejected rather than silently ignored.
func parseStatusQuery(c *fiber.Ctx) (domain.RequestStatus, bool, error) {
	val := c.Query("status")
	if val == "" {
		return "", false, nil
	}
	status := domain.RequestStatus(val)
	if !status.Valid() {
		return "", false, apperrors.NewValidationError("invalid status filter", map[string]any{
			"status": []string{"Must be one of PENDING, ACCEPTED, REJECTED, COMPLETED."},
		})
	}
	return status, true, nil
}

// parseTime reads an optional date filter. Malformed values are
// rejected rather than silently ignored, like the status filters.
func parseTime(field, val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return &t, nil
	}
	return nil, apperrors.NewValidationError("invalid date filter", map[string]any{
		field: []string{"Must be an RFC 3339 timestamp or a YYYY-MM-DD date."},
	})
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
