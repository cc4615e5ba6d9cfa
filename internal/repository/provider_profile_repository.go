package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ProviderProfileRepository encapsulates provider profile persistence.
type ProviderProfileRepository interface {
	WithTx(db DBTX) ProviderProfileRepository
	Create(ctx context.Context, profile *domain.ProviderProfile) error
	Update(ctx context.Context, profile *domain.ProviderProfile) error
	GetByID(ctx context.Context, id string) (*domain.ProviderProfile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfile, error)
	ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]domain.ProviderProfile, error)
}

type providerProfileRepository struct {
	db DBTX
}

// NewProviderProfileRepository returns a Postgres-backed implementation.
func NewProviderProfileRepository(db DBTX) ProviderProfileRepository {
	return &providerProfileRepository{db: db}
}

func (r *providerProfileRepository) WithTx(db DBTX) ProviderProfileRepository {
	return &providerProfileRepository{db: db}
}

func (r *providerProfileRepository) Create(ctx context.Context, profile *domain.ProviderProfile) error {
	const query = `
        INSERT INTO provider_profiles (user_id, service_description, approval_status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		profile.UserID,
		profile.ServiceDescription,
		profile.ApprovalStatus,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *providerProfileRepository) Update(ctx context.Context, profile *domain.ProviderProfile) error {
	const query = `
        UPDATE provider_profiles
        SET service_description=$1, approval_status=$2, approved_by=$3, approved_at=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.db.Exec(ctx, query,
		profile.ServiceDescription,
		profile.ApprovalStatus,
		profile.ApprovedByID,
		profile.ApprovedAt,
		profile.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const profileColumns = `
        p.id, p.user_id, p.service_description, p.approval_status, p.approved_by, p.approved_at,
        p.created_at, p.updated_at,
        u.id, u.email, u.first_name, u.last_name, u.role, u.is_active, u.password_hash, u.created_at, u.updated_at`

func (r *providerProfileRepository) GetByID(ctx context.Context, id string) (*domain.ProviderProfile, error) {
	query := `
        SELECT ` + profileColumns + `
        FROM provider_profiles p
        JOIN users u ON u.id = p.user_id
        WHERE p.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *providerProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfile, error) {
	query := `
        SELECT ` + profileColumns + `
        FROM provider_profiles p
        JOIN users u ON u.id = p.user_id
        WHERE p.user_id=$1`
	return r.fetchSingle(ctx, query, userID)
}

func (r *providerProfileRepository) ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]domain.ProviderProfile, error) {
	query := `
        SELECT ` + profileColumns + `
        FROM provider_profiles p
        JOIN users u ON u.id = p.user_id
        WHERE p.approval_status=$1
        ORDER BY p.created_at DESC`

	rows, err := r.db.Query(ctx, query, status)
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

func (r *providerProfileRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ProviderProfile, error) {
	return scanProfile(r.db.QueryRow(ctx, query, arg))
}

func scanProfile(row pgx.Row) (*domain.ProviderProfile, error) {
	var profile domain.ProviderProfile
	var user domain.User
	if err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.ServiceDescription,
		&profile.ApprovalStatus,
		&profile.ApprovedByID,
		&profile.ApprovedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.IsActive,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	profile.User = &user
	return &profile, nil
}
