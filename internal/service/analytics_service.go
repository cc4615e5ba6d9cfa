package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// ReportKind names an exportable CSV report.
type ReportKind string

const (
	ReportUsers     ReportKind = "users"
	ReportProviders ReportKind = "providers"
	ReportRequests  ReportKind = "requests"
)

// AnalyticsService exposes read-only rollups for admins. Every call
// recomputes from the source tables.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
}

// NewAnalyticsService builds the service.
func NewAnalyticsService(analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics}
}

// Dashboard returns the aggregate metric snapshot.
func (s *AnalyticsService) Dashboard(ctx context.Context, rng repository.DateRange) (*repository.DashboardMetrics, error) {
	return s.analytics.DashboardMetrics(ctx, rng)
}

// UserRegistrations returns the per-day registration histogram.
func (s *AnalyticsService) UserRegistrations(ctx context.Context, rng repository.DateRange, role *domain.Role) ([]repository.DailyCount, error) {
	if role != nil && !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role filter", map[string]any{
			"role": []string{"Must be one of REGULAR, PROVIDER, ADMIN."},
		})
	}
	return s.analytics.UserRegistrationsByDay(ctx, rng, role)
}

// RequestStats returns the per-day request histogram.
func (s *AnalyticsService) RequestStats(ctx context.Context, rng repository.DateRange, status *domain.RequestStatus) ([]repository.DailyCount, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status filter", map[string]any{
			"status": []string{"Must be one of PENDING, ACCEPTED, REJECTED, COMPLETED."},
		})
	}
	return s.analytics.RequestsByDay(ctx, rng, status)
}

// ProviderActivity returns the per-provider rollups, most requested
// first.
func (s *AnalyticsService) ProviderActivity(ctx context.Context, rng repository.DateRange) ([]repository.ProviderActivity, error) {
	return s.analytics.ProviderActivity(ctx, rng)
}

// SearchUsers matches users by email or name, case-insensitive.
func (s *AnalyticsService) SearchUsers(ctx context.Context, query string, role *domain.Role) ([]domain.User, error) {
	if role != nil && !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role filter", map[string]any{
			"role": []string{"Must be one of REGULAR, PROVIDER, ADMIN."},
		})
	}
	return s.analytics.SearchUsers(ctx, query, role)
}

// SearchProviders matches provider profiles by owner email, name, or
// service description.
func (s *AnalyticsService) SearchProviders(ctx context.Context, query string) ([]domain.ProviderProfile, error) {
	return s.analytics.SearchProviders(ctx, query)
}

// SearchRequests matches requests by service name or participant
// details.
func (s *AnalyticsService) SearchRequests(ctx context.Context, query string, status *domain.RequestStatus) ([]domain.ServiceRequest, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status filter", map[string]any{
			"status": []string{"Must be one of PENDING, ACCEPTED, REJECTED, COMPLETED."},
		})
	}
	return s.analytics.SearchRequests(ctx, query, status)
}

// ExportCSV renders one of the reports as CSV bytes.
func (s *AnalyticsService) ExportCSV(ctx context.Context, report ReportKind, rng repository.DateRange) ([]byte, string, error) {
	switch report {
	case ReportUsers:
		data, err := s.exportUsers(ctx, rng)
		return data, "users.csv", err
	case ReportProviders:
		data, err := s.exportProviders(ctx)
		return data, "providers.csv", err
	case ReportRequests:
		data, err := s.exportRequests(ctx)
		return data, "requests.csv", err
	default:
		return nil, "", apperrors.NewValidationError("invalid report", map[string]any{
			"report": []string{"Must be one of users, providers, requests."},
		})
	}
}

func (s *AnalyticsService) exportUsers(ctx context.Context, rng repository.DateRange) ([]byte, error) {
	users, err := s.analytics.SearchUsers(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"ID", "Email", "First Name", "Last Name", "Role", "Is Active", "Created At"}}
	for _, u := range users {
		if !inRange(u.CreatedAt, rng) {
			continue
		}
		rows = append(rows, []string{
			u.ID,
			u.Email,
			u.FirstName,
			u.LastName,
			string(u.Role),
			yesNo(u.IsActive),
			u.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return renderCSV(rows)
}

func (s *AnalyticsService) exportProviders(ctx context.Context) ([]byte, error) {
	profiles, err := s.analytics.SearchProviders(ctx, "")
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"ID", "Email", "First Name", "Last Name", "Approval Status", "Service Description", "Created At"}}
	for _, p := range profiles {
		rows = append(rows, []string{
			p.ID,
			p.User.Email,
			p.User.FirstName,
			p.User.LastName,
			string(p.ApprovalStatus),
			p.ServiceDescription,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return renderCSV(rows)
}

func (s *AnalyticsService) exportRequests(ctx context.Context) ([]byte, error) {
	requests, err := s.analytics.SearchRequests(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"ID", "Service", "Requester", "Provider", "Status", "Cost", "Created At"}}
	for _, r := range requests {
		rows = append(rows, []string{
			r.ID,
			r.Service.Name,
			r.Requester.Email,
			r.Provider.Email,
			string(r.Status),
			strconv.FormatFloat(r.Service.Cost, 'f', 2, 64),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return renderCSV(rows)
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}

func inRange(t time.Time, rng repository.DateRange) bool {
	if rng.Start != nil && t.Before(*rng.Start) {
		return false
	}
	if rng.End != nil && t.After(*rng.End) {
		return false
	}
	return true
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
