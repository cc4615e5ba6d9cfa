package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// CatalogService owns the service catalog: CRUD with ownership checks,
// public search, and soft deletion guarded by outstanding requests.
type CatalogService struct {
	services repository.ServiceRepository
	profiles repository.ProviderProfileRepository
	tx       repository.TxManager
}

// CatalogDependencies bundles collaborators for the catalog service.
type CatalogDependencies struct {
	ServiceRepo repository.ServiceRepository
	ProfileRepo repository.ProviderProfileRepository
	Tx          repository.TxManager
}

// ServiceInput describes service creation/update payloads.
type ServiceInput struct {
	Name        string
	Description string
	Location    string
	Cost        float64
}

// ServiceSearchInput describes public catalog search parameters.
type ServiceSearchInput struct {
	Location *string
	MinCost  *float64
	MaxCost  *float64
	Limit    int
	Offset   int
}

// NewCatalogService builds the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		services: deps.ServiceRepo,
		profiles: deps.ProfileRepo,
		tx:       deps.Tx,
	}
}

// Create adds a service for an approved provider.
func (s *CatalogService) Create(ctx context.Context, provider *domain.User, input ServiceInput) (*domain.Service, error) {
	if err := s.requireApprovedProvider(ctx, provider); err != nil {
		return nil, err
	}
	if err := validateServiceInput(input); err != nil {
		return nil, err
	}

	service := &domain.Service{
		ProviderID:  provider.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Cost:        input.Cost,
		IsActive:    true,
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, err
	}
	service.Provider = provider
	return service, nil
}

// Update modifies a service owned by the provider.
func (s *CatalogService) Update(ctx context.Context, provider *domain.User, serviceID string, input ServiceInput) (*domain.Service, error) {
	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if service.ProviderID != provider.ID {
		return nil, apperrors.NewForbidden("you can only update your own services")
	}
	if err := validateServiceInput(input); err != nil {
		return nil, err
	}

	service.Name = strings.TrimSpace(input.Name)
	service.Description = strings.TrimSpace(input.Description)
	service.Location = strings.TrimSpace(input.Location)
	service.Cost = input.Cost
	if err := s.services.Update(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// Delete soft-deletes a service owned by the provider. A service with
// any PENDING request cannot be deleted; the check and the flag flip
// share one transaction.
func (s *CatalogService) Delete(ctx context.Context, provider *domain.User, serviceID string) (*domain.Service, error) {
	var service *domain.Service

	err := s.tx.WithinTx(ctx, func(db repository.DBTX) error {
		services := s.services.WithTx(db)

		current, err := services.GetByID(ctx, serviceID)
		if err != nil {
			return err
		}
		if current.ProviderID != provider.ID {
			return apperrors.NewForbidden("you can only delete your own services")
		}

		pending, err := services.CountPendingRequests(ctx, current.ID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return apperrors.NewValidationError("cannot delete service", map[string]any{
				"service": []string{"Cannot delete a service with pending requests. Please wait for all requests to be resolved."},
			})
		}

		current.IsActive = false
		if err := services.Update(ctx, current); err != nil {
			return err
		}
		service = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return service, nil
}

// Get returns an active service by ID.
func (s *CatalogService) Get(ctx context.Context, serviceID string) (*domain.Service, error) {
	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !service.IsActive {
		return nil, apperrors.NewNotFound("service", nil)
	}
	return service, nil
}

// ListOwn returns all services of a provider, including inactive ones.
func (s *CatalogService) ListOwn(ctx context.Context, provider *domain.User) ([]domain.Service, error) {
	return s.services.ListByProvider(ctx, provider.ID)
}

// Search returns active services of approved providers matching the
// filters.
func (s *CatalogService) Search(ctx context.Context, input ServiceSearchInput) ([]domain.Service, error) {
	if input.MinCost != nil && *input.MinCost < 0 {
		return nil, apperrors.NewValidationError("invalid cost filter", map[string]any{
			"min_cost": []string{"Minimum cost cannot be negative."},
		})
	}
	if input.MaxCost != nil && *input.MaxCost < 0 {
		return nil, apperrors.NewValidationError("invalid cost filter", map[string]any{
			"max_cost": []string{"Maximum cost cannot be negative."},
		})
	}
	if input.MinCost != nil && input.MaxCost != nil && *input.MinCost > *input.MaxCost {
		return nil, apperrors.NewValidationError("invalid cost filter", map[string]any{
			"cost": []string{"Minimum cost cannot be greater than maximum cost."},
		})
	}

	return s.services.Search(ctx, repository.ServiceFilter{
		Location:     input.Location,
		MinCost:      input.MinCost,
		MaxCost:      input.MaxCost,
		OnlyApproved: true,
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
}

func (s *CatalogService) requireApprovedProvider(ctx context.Context, provider *domain.User) error {
	profile, err := s.profiles.GetByUserID(ctx, provider.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("your provider account must be approved before creating services")
		}
		return err
	}
	if profile.ApprovalStatus != domain.ApprovalStatusApproved {
		return apperrors.NewForbidden("your provider account must be approved before creating services")
	}
	return nil
}

func validateServiceInput(input ServiceInput) error {
	if len(strings.TrimSpace(input.Name)) < 3 {
		return apperrors.NewValidationError("service name validation failed", map[string]any{
			"name": []string{"Service name must be at least 3 characters long."},
		})
	}
	if len(strings.TrimSpace(input.Description)) < 10 {
		return apperrors.NewValidationError("service description validation failed", map[string]any{
			"description": []string{"Service description must be at least 10 characters long."},
		})
	}
	if len(strings.TrimSpace(input.Location)) < 2 {
		return apperrors.NewValidationError("service location validation failed", map[string]any{
			"location": []string{"Service location must be at least 2 characters long."},
		})
	}
	if input.Cost <= 0 {
		return apperrors.NewValidationError("service cost validation failed", map[string]any{
			"cost": []string{"Service cost must be greater than 0."},
		})
	}
	return nil
}
