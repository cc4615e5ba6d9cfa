package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// RequestService owns the service request workflow:
// PENDING -> ACCEPTED | REJECTED over ServiceRequest.status.
type RequestService struct {
	requests   repository.RequestRepository
	services   repository.ServiceRepository
	profiles   repository.ProviderProfileRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	ServiceRepo repository.ServiceRepository
	ProfileRepo repository.ProviderProfileRepository
	Tx          repository.TxManager
	Dispatcher  events.Dispatcher
}

// RequestListInput describes role-scoped listing parameters.
type RequestListInput struct {
	Status *domain.RequestStatus
	Limit  int
	Offset int
}

// NewRequestService builds the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		services:   deps.ServiceRepo,
		profiles:   deps.ProfileRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
	}
}

// Create files a request from a regular user against an active service
// of an approved provider. The provider reference is denormalized from
// the service inside the same transaction as the insert.
func (s *RequestService) Create(ctx context.Context, requester *domain.User, serviceID, message string) (*domain.ServiceRequest, error) {
	if requester.Role != domain.RoleRegular {
		return nil, apperrors.NewValidationError("only regular users can create service requests", map[string]any{
			"role": "Invalid user role",
		})
	}

	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": serviceID})
		}
		return nil, err
	}
	if !service.IsActive {
		return nil, apperrors.NewNotFound("service", map[string]any{"service_id": serviceID})
	}
	if service.Provider.Role != domain.RoleProvider {
		return nil, apperrors.NewValidationError("service provider is not valid", map[string]any{
			"provider": "Invalid provider",
		})
	}

	profile, err := s.profiles.GetByUserID(ctx, service.ProviderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("service provider is not approved", map[string]any{
				"provider": "Provider not approved",
			})
		}
		return nil, err
	}
	if profile.ApprovalStatus != domain.ApprovalStatusApproved {
		return nil, apperrors.NewValidationError("service provider is not approved", map[string]any{
			"provider": "Provider not approved",
		})
	}

	request := &domain.ServiceRequest{
		ServiceID:   service.ID,
		RequesterID: requester.ID,
		ProviderID:  service.ProviderID,
		Status:      domain.RequestStatusPending,
		Message:     strings.TrimSpace(message),
	}
	err = s.tx.WithinTx(ctx, func(db repository.DBTX) error {
		return s.requests.WithTx(db).Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}
	request.Service = service
	request.Requester = requester
	request.Provider = service.Provider

	s.publish(ctx, events.EventRequestCreated, requester.ID, events.RequestCreatedPayload{
		RequestID:     request.ID,
		ServiceName:   service.Name,
		ProviderEmail: service.Provider.Email,
		ProviderName:  service.Provider.FullName(),
		RequesterName: requester.FullName(),
	})
	return request, nil
}

// Accept transitions a PENDING request to ACCEPTED. Only the receiving
// provider may decide; any other actor is denied. Deciding a request
// outside PENDING conflicts.
func (s *RequestService) Accept(ctx context.Context, requestID string, actor *domain.User) (*domain.ServiceRequest, error) {
	return s.decide(ctx, requestID, actor, domain.RequestActionAccept, events.EventRequestAccepted)
}

// Reject transitions a PENDING request to REJECTED, symmetric to Accept.
func (s *RequestService) Reject(ctx context.Context, requestID string, actor *domain.User) (*domain.ServiceRequest, error) {
	return s.decide(ctx, requestID, actor, domain.RequestActionReject, events.EventRequestRejected)
}

// Get returns a request visible to its requester, its provider, or an
// admin.
func (s *RequestService) Get(ctx context.Context, requestID string, actor *domain.User) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canAccessRequest(actor, request) {
		return nil, apperrors.NewForbidden("you do not have access to this request")
	}
	return request, nil
}

// List returns requests scoped by the actor's role: requesters see
// requests they sent, providers see requests they received, admins see
// all. Newest first.
func (s *RequestService) List(ctx context.Context, actor *domain.User, input RequestListInput) ([]domain.ServiceRequest, error) {
	filter := repository.RequestFilter{
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	switch actor.Role {
	case domain.RoleRegular:
		filter.RequesterID = &actor.ID
	case domain.RoleProvider:
		filter.ProviderID = &actor.ID
	case domain.RoleAdmin:
		// unscoped
	default:
		return []domain.ServiceRequest{}, nil
	}
	return s.requests.List(ctx, filter)
}

func (s *RequestService) decide(ctx context.Context, requestID string, actor *domain.User, action domain.RequestAction, eventType events.EventType) (*domain.ServiceRequest, error) {
	var request *domain.ServiceRequest

	err := s.tx.WithinTx(ctx, func(db repository.DBTX) error {
		requests := s.requests.WithTx(db)

		// Re-read inside the transaction: two concurrent decisions race
		// on the status guard and the loser fails here.
		current, err := requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if current.ProviderID != actor.ID {
			return apperrors.NewForbidden("only the service provider can decide this request")
		}

		next, ok := domain.NextRequestStatus(current.Status, action)
		if !ok {
			return apperrors.NewConflict(
				"cannot "+string(action)+" request with status "+string(current.Status),
				map[string]any{"status": string(current.Status)},
			)
		}

		if err := requests.UpdateStatus(ctx, current.ID, next); err != nil {
			return err
		}
		current.Status = next
		request = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, actor.ID, events.RequestDecisionPayload{
		RequestID:      request.ID,
		ServiceName:    request.Service.Name,
		RequesterEmail: request.Requester.Email,
		RequesterName:  request.Requester.FullName(),
		ProviderName:   request.Provider.FullName(),
	})
	return request, nil
}

func canAccessRequest(actor *domain.User, request *domain.ServiceRequest) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return request.RequesterID == actor.ID || request.ProviderID == actor.ID
}

func (s *RequestService) publish(ctx context.Context, eventType events.EventType, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
