package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and credential flows.
type AuthService struct {
	users      repository.UserRepository
	profiles   repository.ProviderProfileRepository
	tx         repository.TxManager
	tokenMgr   *auth.TokenManager
	refresh    auth.RefreshStore
	bcryptCost int
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	ProfileRepo repository.ProviderProfileRepository
	Tx          repository.TxManager
	Refresh     auth.RefreshStore
}

// RegisterInput describes a unified, role-discriminated registration.
type RegisterInput struct {
	Email              string
	Password           string
	FirstName          string
	LastName           string
	Role               domain.Role
	ServiceDescription string
}

// AuthResult carries the credential pair returned by login/refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		profiles:   deps.ProfileRepo,
		tx:         deps.Tx,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		refresh:    deps.Refresh,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates an account for the requested role. Regular users are
// created active. Providers are created inactive together with a
// PENDING profile in one transaction, so a user without a profile (or
// vice versa) is never observable.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.ProviderProfile, error) {
	switch input.Role {
	case domain.RoleRegular:
		user, err := s.registerRegular(ctx, input)
		return user, nil, err
	case domain.RoleProvider:
		return s.registerProvider(ctx, input)
	default:
		return nil, nil, apperrors.NewValidationError("invalid role", map[string]any{
			"role": []string{"Must be either REGULAR or PROVIDER"},
		})
	}
}

func (s *AuthService) registerRegular(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := s.checkEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         domain.RoleRegular,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) registerProvider(ctx context.Context, input RegisterInput) (*domain.User, *domain.ProviderProfile, error) {
	if err := s.checkEmailFree(ctx, input.Email); err != nil {
		return nil, nil, err
	}
	if len(strings.TrimSpace(input.ServiceDescription)) < 10 {
		return nil, nil, apperrors.NewValidationError("service description validation failed", map[string]any{
			"service_description": []string{"Service description must be at least 10 characters long."},
		})
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         domain.RoleProvider,
		IsActive:     false, // inactive until approved
		PasswordHash: hash,
	}
	profile := &domain.ProviderProfile{
		ServiceDescription: strings.TrimSpace(input.ServiceDescription),
		ApprovalStatus:     domain.ApprovalStatusPending,
	}

	err = s.tx.WithinTx(ctx, func(db repository.DBTX) error {
		users := s.users.WithTx(db)
		profiles := s.profiles.WithTx(db)
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		profile.UserID = user.ID
		return profiles.Create(ctx, profile)
	})
	if err != nil {
		return nil, nil, err
	}
	profile.User = user
	return user, profile, nil
}

// Login authenticates a user and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	// Providers stay inactive until an admin approves their application.
	if !user.IsActive {
		return nil, nil, apperrors.NewForbidden("account is inactive")
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, result, nil
}

// RefreshToken redeems a refresh token and rotates the pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.User, *AuthResult, error) {
	userID, err := s.refresh.Redeem(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenInvalid) {
			return nil, nil, apperrors.NewUnauthorized("refresh token invalid or expired")
		}
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, nil, err
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, result, nil
}

// ChangePassword verifies the current password before updating.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("password change failed", map[string]any{
			"current_password": []string{"Current password is incorrect."},
		})
	}
	if currentPassword == newPassword {
		return apperrors.NewValidationError("password change failed", map[string]any{
			"new_password": []string{"New password must be different from current password."},
		})
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// CurrentUser loads the authenticated user's account, including the
// provider profile when one exists.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, *domain.ProviderProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.Role != domain.RoleProvider {
		return user, nil, nil
	}
	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, nil, nil
		}
		return nil, nil, err
	}
	return user, profile, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	access, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (s *AuthService) checkEmailFree(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewValidationError("registration failed", map[string]any{
			"email": []string{"A user with this email already exists."},
		})
	}
	return nil
}
