package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

type fakeAnalyticsRepo struct {
	users    []domain.User
	profiles []domain.ProviderProfile
	requests []domain.ServiceRequest
}

func (f *fakeAnalyticsRepo) DashboardMetrics(context.Context, repository.DateRange) (*repository.DashboardMetrics, error) {
	return &repository.DashboardMetrics{TotalUsers: len(f.users)}, nil
}

func (f *fakeAnalyticsRepo) UserRegistrationsByDay(context.Context, repository.DateRange, *domain.Role) ([]repository.DailyCount, error) {
	return []repository.DailyCount{{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Count: len(f.users)}}, nil
}

func (f *fakeAnalyticsRepo) RequestsByDay(context.Context, repository.DateRange, *domain.RequestStatus) ([]repository.DailyCount, error) {
	return nil, nil
}

func (f *fakeAnalyticsRepo) ProviderActivity(context.Context, repository.DateRange) ([]repository.ProviderActivity, error) {
	return nil, nil
}

func (f *fakeAnalyticsRepo) SearchUsers(context.Context, string, *domain.Role) ([]domain.User, error) {
	return f.users, nil
}

func (f *fakeAnalyticsRepo) SearchProviders(context.Context, string) ([]domain.ProviderProfile, error) {
	return f.profiles, nil
}

func (f *fakeAnalyticsRepo) SearchRequests(context.Context, string, *domain.RequestStatus) ([]domain.ServiceRequest, error) {
	return f.requests, nil
}

func newAnalyticsFixture() (*service.AnalyticsService, *fakeAnalyticsRepo) {
	owner := domain.User{
		ID: "user-1", Email: "pro@example.com", FirstName: "Pat", LastName: "Smith",
		Role: domain.RoleProvider, IsActive: true,
		CreatedAt: time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
	}
	requester := domain.User{
		ID: "user-2", Email: "customer@example.com", FirstName: "Cus", LastName: "Tomer",
		Role: domain.RoleRegular, IsActive: true,
		CreatedAt: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
	}
	offering := domain.Service{ID: "service-1", Name: "Move", Cost: 250}

	repo := &fakeAnalyticsRepo{
		users: []domain.User{owner, requester},
		profiles: []domain.ProviderProfile{{
			ID: "profile-1", UserID: owner.ID, ServiceDescription: "Moving services",
			ApprovalStatus: domain.ApprovalStatusApproved,
			CreatedAt:      owner.CreatedAt, User: &owner,
		}},
		requests: []domain.ServiceRequest{{
			ID: "request-1", Status: domain.RequestStatusAccepted,
			CreatedAt: requester.CreatedAt,
			Service:   &offering, Requester: &requester, Provider: &owner,
		}},
	}
	return service.NewAnalyticsService(repo), repo
}

func TestExportCSV_Users(t *testing.T) {
	svc, _ := newAnalyticsFixture()

	data, filename, err := svc.ExportCSV(context.Background(), service.ReportUsers, repository.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "users.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Email,First Name,Last Name,Role,Is Active,Created At", lines[0])
	assert.Contains(t, lines[1], "pro@example.com")
	assert.Contains(t, lines[1], "PROVIDER")
	assert.Contains(t, lines[2], "customer@example.com")
}

func TestExportCSV_UsersHonorsDateRange(t *testing.T) {
	svc, _ := newAnalyticsFixture()

	start := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	data, _, err := svc.ExportCSV(context.Background(), service.ReportUsers, repository.DateRange{Start: &start})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "only the user registered after the start date remains")
	assert.Contains(t, lines[1], "customer@example.com")
}

func TestExportCSV_ProvidersAndRequests(t *testing.T) {
	svc, _ := newAnalyticsFixture()

	data, filename, err := svc.ExportCSV(context.Background(), service.ReportProviders, repository.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "providers.csv", filename)
	assert.Contains(t, string(data), "APPROVED")

	data, filename, err = svc.ExportCSV(context.Background(), service.ReportRequests, repository.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "requests.csv", filename)
	assert.Contains(t, string(data), "250.00")
	assert.Contains(t, string(data), "ACCEPTED")
}

func TestExportCSV_InvalidReport(t *testing.T) {
	svc, _ := newAnalyticsFixture()

	_, _, err := svc.ExportCSV(context.Background(), service.ReportKind("bogus"), repository.DateRange{})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAnalytics_InvalidFilters(t *testing.T) {
	svc, _ := newAnalyticsFixture()

	badRole := domain.Role("SUPERUSER")
	_, err := svc.UserRegistrations(context.Background(), repository.DateRange{}, &badRole)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.SearchUsers(context.Background(), "x", &badRole)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	badStatus := domain.RequestStatus("DONE")
	_, err = svc.RequestStats(context.Background(), repository.DateRange{}, &badStatus)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.SearchRequests(context.Background(), "x", &badStatus)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAnalytics_Dashboard(t *testing.T) {
	svc, _ := newAnalyticsFixture()

	metrics, err := svc.Dashboard(context.Background(), repository.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalUsers)
}
