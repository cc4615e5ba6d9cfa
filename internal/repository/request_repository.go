package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// RequestFilter captures listing parameters for service requests.
type RequestFilter struct {
	RequesterID *string
	ProviderID  *string
	Status      *domain.RequestStatus
	Limit       int
	Offset      int
}

// RequestRepository encapsulates service request persistence.
type RequestRepository interface {
	WithTx(db DBTX) RequestRepository
	Create(ctx context.Context, request *domain.ServiceRequest) error
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error)
}

type requestRepository struct {
	db DBTX
}

// NewRequestRepository returns a Postgres-backed implementation.
func NewRequestRepository(db DBTX) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) WithTx(db DBTX) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (service_id, requester_id, provider_id, status, message)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		request.ServiceID,
		request.RequesterID,
		request.ProviderID,
		request.Status,
		request.Message,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	const query = `UPDATE service_requests SET status=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const requestColumns = `
        r.id, r.service_id, r.requester_id, r.provider_id, r.status, r.message, r.created_at, r.updated_at,
        s.id, s.provider_id, s.name, s.description, s.location, s.cost, s.is_active, s.created_at, s.updated_at,
        rq.id, rq.email, rq.first_name, rq.last_name, rq.role, rq.is_active, rq.created_at, rq.updated_at,
        pv.id, pv.email, pv.first_name, pv.last_name, pv.role, pv.is_active, pv.created_at, pv.updated_at`

const requestJoins = `
        FROM service_requests r
        JOIN services s ON s.id = r.service_id
        JOIN users rq ON rq.id = r.requester_id
        JOIN users pv ON pv.id = r.provider_id`

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` WHERE r.id=$1`
	return scanRequest(r.db.QueryRow(ctx, query, id))
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("r.requester_id=$%d", len(args)))
	}
	if filter.ProviderID != nil {
		args = append(args, *filter.ProviderID)
		clauses = append(clauses, fmt.Sprintf("r.provider_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("r.status=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d`,
		requestColumns, requestJoins, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
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

func scanRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var request domain.ServiceRequest
	var service domain.Service
	var requester, provider domain.User
	if err := row.Scan(
		&request.ID,
		&request.ServiceID,
		&request.RequesterID,
		&request.ProviderID,
		&request.Status,
		&request.Message,
		&request.CreatedAt,
		&request.UpdatedAt,
		&service.ID,
		&service.ProviderID,
		&service.Name,
		&service.Description,
		&service.Location,
		&service.Cost,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
		&requester.ID,
		&requester.Email,
		&requester.FirstName,
		&requester.LastName,
		&requester.Role,
		&requester.IsActive,
		&requester.CreatedAt,
		&requester.UpdatedAt,
		&provider.ID,
		&provider.Email,
		&provider.FirstName,
		&provider.LastName,
		&provider.Role,
		&provider.IsActive,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	); err != nil {
		return nil, err
	}
	request.Service = &service
	request.Requester = &requester
	request.Provider = &provider
	return &request, nil
}
