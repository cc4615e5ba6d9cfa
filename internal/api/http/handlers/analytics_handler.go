package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/service"
)

// AnalyticsHandler exposes the admin reporting endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analyticsService}
}

// Dashboard GET /analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	rng, err := parseDateRange(c)
	if err != nil {
		return err
	}
	metrics, err := h.analytics.Dashboard(c.Context(), rng)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		TotalUsers:          metrics.TotalUsers,
		TotalRegularUsers:   metrics.TotalRegularUsers,
		TotalProviders:      metrics.TotalProviders,
		ActiveProviders:     metrics.ActiveProviders,
		PendingApplications: metrics.PendingApplications,
		PendingRequests:     metrics.PendingRequests,
		AcceptedRequests:    metrics.AcceptedRequests,
		CompletedRequests:   metrics.CompletedRequests,
		RejectedRequests:    metrics.RejectedRequests,
		TotalServices:       metrics.TotalServices,
	}})
}

// Registrations GET /analytics/users/registrations.
func (h *AnalyticsHandler) Registrations(c *fiber.Ctx) error {
	var role *domain.Role
	if val := c.Query("role"); val != "" {
		r := domain.Role(val)
		role = &r
	}

	rng, err := parseDateRange(c)
	if err != nil {
		return err
	}
	counts, err := h.analytics.UserRegistrations(c.Context(), rng, role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dailyCounts(counts)})
}

// Requests GET /analytics/requests/stats.
func (h *AnalyticsHandler) Requests(c *fiber.Ctx) error {
	var status *domain.RequestStatus
	if val := c.Query("status"); val != "" {
		s := domain.RequestStatus(val)
		status = &s
	}

	rng, err := parseDateRange(c)
	if err != nil {
		return err
	}
	counts, err := h.analytics.RequestStats(c.Context(), rng, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dailyCounts(counts)})
}

// Providers GET /analytics/providers/activity.
func (h *AnalyticsHandler) Providers(c *fiber.Ctx) error {
	rng, err := parseDateRange(c)
	if err != nil {
		return err
	}
	rows, err := h.analytics.ProviderActivity(c.Context(), rng)
	if err != nil {
		return err
	}
	items := make([]dto.ProviderActivityResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.ProviderActivityResponse{
			ProviderID:             row.ProviderID,
			Email:                  row.Email,
			FirstName:              row.FirstName,
			LastName:               row.LastName,
			CreatedAt:              row.CreatedAt,
			ServicesCount:          row.ServicesCount,
			ReceivedRequestsCount:  row.ReceivedRequestsCount,
			AcceptedRequestsCount:  row.AcceptedRequestsCount,
			CompletedRequestsCount: row.CompletedRequestsCount,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// SearchUsers GET /analytics/users/search.
func (h *AnalyticsHandler) SearchUsers(c *fiber.Ctx) error {
	var role *domain.Role
	if val := c.Query("role"); val != "" {
		r := domain.Role(val)
		role = &r
	}
	users, err := h.analytics.SearchUsers(c.Context(), c.Query("q"), role)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, *userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SearchProviders GET /analytics/providers/search.
func (h *AnalyticsHandler) SearchProviders(c *fiber.Ctx) error {
	profiles, err := h.analytics.SearchProviders(c.Context(), c.Query("q"))
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, *profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SearchRequests GET /analytics/requests/search.
func (h *AnalyticsHandler) SearchRequests(c *fiber.Ctx) error {
	var status *domain.RequestStatus
	if val := c.Query("status"); val != "" {
		s := domain.RequestStatus(val)
		status = &s
	}
	requests, err := h.analytics.SearchRequests(c.Context(), c.Query("q"), status)
	if err != nil {
		return err
	}
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, *requestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Export GET /analytics/export.
func (h *AnalyticsHandler) Export(c *fiber.Ctx) error {
	report := service.ReportKind(c.Query("report", string(service.ReportUsers)))

	rng, err := parseDateRange(c)
	if err != nil {
		return err
	}
	data, filename, err := h.analytics.ExportCSV(c.Context(), report, rng)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

func parseDateRange(c *fiber.Ctx) (repository.DateRange, error) {
	start, err := parseTime("start_date", c.Query("start_date"))
	if err != nil {
		return repository.DateRange{}, err
	}
	end, err := parseTime("end_date", c.Query("end_date"))
	if err != nil {
		return repository.DateRange{}, err
	}
	return repository.DateRange{Start: start, End: end}, nil
}

func dailyCounts(counts []repository.DailyCount) []dto.DailyCountResponse {
	items := make([]dto.DailyCountResponse, 0, len(counts))
	for _, count := range counts {
		items = append(items, dto.DailyCountResponse{
			Date:  count.Date.Format("2006-01-02"),
			Count: count.Count,
		})
	}
	return items
}
