package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// ServicesHandler manages the catalog endpoints.
type ServicesHandler struct {
	catalog *service.CatalogService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(catalogService *service.CatalogService) *ServicesHandler {
	return &ServicesHandler{catalog: catalogService}
}

// Create POST /services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	var req dto.ServicePayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	created, err := h.catalog.Create(c.Context(), actor, serviceInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": serviceResponse(created)})
}

// Update PUT /services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	var req dto.ServicePayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	updated, err := h.catalog.Update(c.Context(), actor, c.Params("id"), serviceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(updated)})
}

// Delete DELETE /services/:id.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	deleted, err := h.catalog.Delete(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(deleted)})
}

// Get GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	found, err := h.catalog.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(found)})
}

// ListOwn GET /services/my-services.
func (h *ServicesHandler) ListOwn(c *fiber.Ctx) error {
	actor, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	services, err := h.catalog.ListOwn(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, *serviceResponse(&services[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Search GET /services.
func (h *ServicesHandler) Search(c *fiber.Ctx) error {
	input := service.ServiceSearchInput{}
	if location := c.Query("location"); location != "" {
		input.Location = &location
	}
	if minCost, ok, err := parseFloatQuery(c, "min_cost"); err != nil {
		return err
	} else if ok {
		input.MinCost = &minCost
	}
	if maxCost, ok, err := parseFloatQuery(c, "max_cost"); err != nil {
		return err
	} else if ok {
		input.MaxCost = &maxCost
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize

	services, err := h.catalog.Search(c.Context(), input)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, *serviceResponse(&services[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func serviceInput(req dto.ServicePayload) service.ServiceInput {
	return service.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Cost:        req.Cost,
	}
}

func parseFloatQuery(c *fiber.Ctx, key string) (float64, bool, error) {
	val := c.Query(key)
	if val == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, apperrors.NewValidationError("invalid query parameter", map[string]any{
			key: []string{"Must be a number."},
		})
	}
	return parsed, true, nil
}
