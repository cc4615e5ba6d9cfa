package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// DashboardMetrics is the aggregate snapshot for the admin dashboard.
type DashboardMetrics struct {
	TotalUsers          int
	TotalRegularUsers   int
	TotalProviders      int
	ActiveProviders     int
	PendingApplications int
	PendingRequests     int
	AcceptedRequests    int
	CompletedRequests   int
	RejectedRequests    int
	TotalServices       int
}

// DailyCount is one bucket of a per-day histogram.
type DailyCount struct {
	Date  time.Time
	Count int
}

// ProviderActivity is the per-provider rollup.
type ProviderActivity struct {
	ProviderID             string
	Email                  string
	FirstName              string
	LastName               string
	CreatedAt              time.Time
	ServicesCount          int
	ReceivedRequestsCount  int
	AcceptedRequestsCount  int
	CompletedRequestsCount int
}

// DateRange bounds an analytics query; either side may be nil.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// AnalyticsRepository exposes read-only rollups over the data-owning
// tables. Every call recomputes from source; there is no cache.
type AnalyticsRepository interface {
	DashboardMetrics(ctx context.Context, rng DateRange) (*DashboardMetrics, error)
	UserRegistrationsByDay(ctx context.Context, rng DateRange, role *domain.Role) ([]DailyCount, error)
	RequestsByDay(ctx context.Context, rng DateRange, status *domain.RequestStatus) ([]DailyCount, error)
	ProviderActivity(ctx context.Context, rng DateRange) ([]ProviderActivity, error)
	SearchUsers(ctx context.Context, query string, role *domain.Role) ([]domain.User, error)
	SearchProviders(ctx context.Context, query string) ([]domain.ProviderProfile, error)
	SearchRequests(ctx context.Context, query string, status *domain.RequestStatus) ([]domain.ServiceRequest, error)
}

type analyticsRepository struct {
	db DBTX
}

// NewAnalyticsRepository returns a Postgres-backed implementation.
func NewAnalyticsRepository(db DBTX) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) DashboardMetrics(ctx context.Context, rng DateRange) (*DashboardMetrics, error) {
	clause, args := dateClause("created_at", rng, nil)

	var m DashboardMetrics
	query := fmt.Sprintf(`
        SELECT
            (SELECT COUNT(*) FROM users %[1]s),
            (SELECT COUNT(*) FROM users %[2]s role='REGULAR'),
            (SELECT COUNT(*) FROM users %[2]s role='PROVIDER'),
            (SELECT COUNT(*) FROM provider_profiles WHERE approval_status='APPROVED'),
            (SELECT COUNT(*) FROM provider_profiles WHERE approval_status='PENDING'),
            (SELECT COUNT(*) FROM service_requests WHERE status='PENDING'),
            (SELECT COUNT(*) FROM service_requests WHERE status='ACCEPTED'),
            (SELECT COUNT(*) FROM service_requests WHERE status='COMPLETED'),
            (SELECT COUNT(*) FROM service_requests WHERE status='REJECTED'),
            (SELECT COUNT(*) FROM services WHERE is_active=TRUE)`,
		whereOrEmpty(clause),
		whereOrAnd(clause),
	)

	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&m.TotalUsers,
		&m.TotalRegularUsers,
		&m.TotalProviders,
		&m.ActiveProviders,
		&m.PendingApplications,
		&m.PendingRequests,
		&m.AcceptedRequests,
		&m.CompletedRequests,
		&m.RejectedRequests,
		&m.TotalServices,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *analyticsRepository) UserRegistrationsByDay(ctx context.Context, rng DateRange, role *domain.Role) ([]DailyCount, error) {
	clauses := []string{"1=1"}
	args := []any{}
	dc, args := dateClause("created_at", rng, args)
	if dc != "" {
		clauses = append(clauses, dc)
	}
	if role != nil {
		args = append(args, *role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}

	query := fmt.Sprintf(`
        SELECT DATE_TRUNC('day', created_at)::date AS day, COUNT(*)
        FROM users WHERE %s
        GROUP BY day ORDER BY day`, strings.Join(clauses, " AND "))

	return r.queryDaily(ctx, query, args)
}

func (r *analyticsRepository) RequestsByDay(ctx context.Context, rng DateRange, status *domain.RequestStatus) ([]DailyCount, error) {
	clauses := []string{"1=1"}
	args := []any{}
	dc, args := dateClause("created_at", rng, args)
	if dc != "" {
		clauses = append(clauses, dc)
	}
	if status != nil {
		args = append(args, *status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`
        SELECT DATE_TRUNC('day', created_at)::date AS day, COUNT(*)
        FROM service_requests WHERE %s
        GROUP BY day ORDER BY day`, strings.Join(clauses, " AND "))

	return r.queryDaily(ctx, query, args)
}

func (r *analyticsRepository) ProviderActivity(ctx context.Context, rng DateRange) ([]ProviderActivity, error) {
	clauses := []string{"u.role='PROVIDER'"}
	args := []any{}
	dc, args := dateClause("u.created_at", rng, args)
	if dc != "" {
		clauses = append(clauses, dc)
	}

	query := fmt.Sprintf(`
        SELECT u.id, u.email, u.first_name, u.last_name, u.created_at,
            (SELECT COUNT(*) FROM services s WHERE s.provider_id=u.id AND s.is_active=TRUE),
            (SELECT COUNT(*) FROM service_requests r WHERE r.provider_id=u.id),
            (SELECT COUNT(*) FROM service_requests r WHERE r.provider_id=u.id AND r.status='ACCEPTED'),
            (SELECT COUNT(*) FROM service_requests r WHERE r.provider_id=u.id AND r.status='COMPLETED')
        FROM users u
        WHERE %s
        ORDER BY 7 DESC`, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProviderActivity
	for rows.Next() {
		var pa ProviderActivity
		if err := rows.Scan(
			&pa.ProviderID,
			&pa.Email,
			&pa.FirstName,
			&pa.LastName,
			&pa.CreatedAt,
			&pa.ServicesCount,
			&pa.ReceivedRequestsCount,
			&pa.AcceptedRequestsCount,
			&pa.CompletedRequestsCount,
		); err != nil {
			return nil, err
		}
		result = append(result, pa)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) SearchUsers(ctx context.Context, query string, role *domain.Role) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if strings.TrimSpace(query) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(query))+"%")
		ph := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(email) LIKE %[1]s OR LOWER(first_name) LIKE %[1]s OR LOWER(last_name) LIKE %[1]s)", ph))
	}
	if role != nil {
		args = append(args, *role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}

	sqlQuery := fmt.Sprintf(`
        SELECT id, email, first_name, last_name, role, is_active, created_at, updated_at
        FROM users WHERE %s ORDER BY created_at DESC`, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) SearchProviders(ctx context.Context, query string) ([]domain.ProviderProfile, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if strings.TrimSpace(query) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(query))+"%")
		ph := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(u.email) LIKE %[1]s OR LOWER(u.first_name) LIKE %[1]s OR LOWER(u.last_name) LIKE %[1]s OR LOWER(p.service_description) LIKE %[1]s)", ph))
	}

	sqlQuery := fmt.Sprintf(`
        SELECT `+profileColumns+`
        FROM provider_profiles p
        JOIN users u ON u.id = p.user_id
        WHERE %s ORDER BY p.created_at DESC`, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProviderProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *profile)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) SearchRequests(ctx context.Context, query string, status *domain.RequestStatus) ([]domain.ServiceRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if strings.TrimSpace(query) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(query))+"%")
		ph := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(s.name) LIKE %[1]s OR LOWER(rq.email) LIKE %[1]s OR LOWER(rq.first_name) LIKE %[1]s OR LOWER(rq.last_name) LIKE %[1]s"+
				" OR LOWER(pv.email) LIKE %[1]s OR LOWER(pv.first_name) LIKE %[1]s OR LOWER(pv.last_name) LIKE %[1]s)", ph))
	}
	if status != nil {
		args = append(args, *status)
		clauses = append(clauses, fmt.Sprintf("r.status=$%d", len(args)))
	}

	sqlQuery := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY r.created_at DESC`,
		requestColumns, requestJoins, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) queryDaily(ctx context.Context, query string, args []any) ([]DailyCount, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

func dateClause(column string, rng DateRange, args []any) (string, []any) {
	parts := []string{}
	if rng.Start != nil {
		args = append(args, *rng.Start)
		parts = append(parts, fmt.Sprintf("%s >= $%d", column, len(args)))
	}
	if rng.End != nil {
		args = append(args, *rng.End)
		parts = append(parts, fmt.Sprintf("%s <= $%d", column, len(args)))
	}
	return strings.Join(parts, " AND "), args
}

func whereOrEmpty(clause string) string {
	if clause == "" {
		return ""
	}
	return "WHERE " + clause
}

func whereOrAnd(clause string) string {
	if clause == "" {
		return "WHERE"
	}
	return "WHERE " + clause + " AND"
}
