package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ServiceFilter captures catalog search parameters.
type ServiceFilter struct {
	Location     *string
	MinCost      *float64
	MaxCost      *float64
	OnlyApproved bool
	Limit        int
	Offset       int
}

// ServiceRepository encapsulates service catalog persistence.
type ServiceRepository interface {
	WithTx(db DBTX) ServiceRepository
	Create(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, service *domain.Service) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	ListByProvider(ctx context.Context, providerID string) ([]domain.Service, error)
	Search(ctx context.Context, filter ServiceFilter) ([]domain.Service, error)
	CountPendingRequests(ctx context.Context, serviceID string) (int, error)
}

type serviceRepository struct {
	db DBTX
}

// NewServiceRepository returns a Postgres-backed implementation.
func NewServiceRepository(db DBTX) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) WithTx(db DBTX) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *domain.Service) error {
	const query = `
        INSERT INTO services (provider_id, name, description, location, cost, is_active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		service.ProviderID,
		service.Name,
		service.Description,
		service.Location,
		service.Cost,
		service.IsActive,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)
}

func (r *serviceRepository) Update(ctx context.Context, service *domain.Service) error {
	const query = `
        UPDATE services SET name=$1, description=$2, location=$3, cost=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.db.Exec(ctx, query,
		service.Name,
		service.Description,
		service.Location,
		service.Cost,
		service.IsActive,
		service.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const serviceColumns = `
        s.id, s.provider_id, s.name, s.description, s.location, s.cost, s.is_active,
        s.created_at, s.updated_at,
        u.id, u.email, u.first_name, u.last_name, u.role, u.is_active, u.password_hash, u.created_at, u.updated_at`

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	query := `
        SELECT ` + serviceColumns + `
        FROM services s
        JOIN users u ON u.id = s.provider_id
        WHERE s.id=$1`
	return scanService(r.db.QueryRow(ctx, query, id))
}

func (r *serviceRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.Service, error) {
	query := `
        SELECT ` + serviceColumns + `
        FROM services s
        JOIN users u ON u.id = s.provider_id
        WHERE s.provider_id=$1
        ORDER BY s.created_at DESC`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

func (r *serviceRepository) Search(ctx context.Context, filter ServiceFilter) ([]domain.Service, error) {
	base := `SELECT ` + serviceColumns + `
             FROM services s
             JOIN users u ON u.id = s.provider_id`
	clauses := []string{"s.is_active = TRUE"}
	args := []any{}

	if filter.OnlyApproved {
		base += `
             JOIN provider_profiles p ON p.user_id = s.provider_id`
		clauses = append(clauses, "p.approval_status = 'APPROVED'")
	}
	if filter.Location != nil && strings.TrimSpace(*filter.Location) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Location))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(s.location) LIKE $%d", len(args)))
	}
	if filter.MinCost != nil {
		args = append(args, *filter.MinCost)
		clauses = append(clauses, fmt.Sprintf("s.cost >= $%d", len(args)))
	}
	if filter.MaxCost != nil {
		args = append(args, *filter.MaxCost)
		clauses = append(clauses, fmt.Sprintf("s.cost <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

// CountPendingRequests reports how many PENDING requests reference the
// service; soft deletion is blocked while this is non-zero.
func (r *serviceRepository) CountPendingRequests(ctx context.Context, serviceID string) (int, error) {
	const query = `SELECT COUNT(*) FROM service_requests WHERE service_id=$1 AND status='PENDING'`
	var count int
	if err := r.db.QueryRow(ctx, query, serviceID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var service domain.Service
	var provider domain.User
	if err := row.Scan(
		&service.ID,
		&service.ProviderID,
		&service.Name,
		&service.Description,
		&service.Location,
		&service.Cost,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
		&provider.ID,
		&provider.Email,
		&provider.FirstName,
		&provider.LastName,
		&provider.Role,
		&provider.IsActive,
		&provider.PasswordHash,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	); err != nil {
		return nil, err
	}
	service.Provider = &provider
	return &service, nil
}

func scanServices(rows pgx.Rows) ([]domain.Service, error) {
	var result []domain.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *service)
	}
	return result, rows.Err()
}
