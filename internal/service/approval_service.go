package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// ApprovalService owns the provider approval workflow:
// PENDING -> APPROVED | REJECTED over ProviderProfile.approval_status.
type ApprovalService struct {
	users      repository.UserRepository
	profiles   repository.ProviderProfileRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
}

// ApprovalDependencies bundles collaborators for the approval service.
type ApprovalDependencies struct {
	UserRepo    repository.UserRepository
	ProfileRepo repository.ProviderProfileRepository
	Tx          repository.TxManager
	Dispatcher  events.Dispatcher
}

// NewApprovalService builds the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	return &ApprovalService{
		users:      deps.UserRepo,
		profiles:   deps.ProfileRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
	}
}

// Approve marks the application APPROVED and activates the owning user
// in one transaction. Approving an already-approved profile conflicts.
// The approval notification is published after commit and its outcome
// never affects the transition.
func (s *ApprovalService) Approve(ctx context.Context, profileID string, admin *domain.User) (*domain.ProviderProfile, error) {
	profile, err := s.decide(ctx, profileID, admin, domain.ApprovalActionApprove)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventProviderApproved, admin.ID, profile)
	return profile, nil
}

// Reject marks the application REJECTED. The owning user stays
// inactive. Rejecting an already-rejected profile conflicts.
func (s *ApprovalService) Reject(ctx context.Context, profileID string, admin *domain.User) (*domain.ProviderProfile, error) {
	profile, err := s.decide(ctx, profileID, admin, domain.ApprovalActionReject)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventProviderRejected, admin.ID, profile)
	return profile, nil
}

// ListPending returns PENDING applications, newest first.
func (s *ApprovalService) ListPending(ctx context.Context) ([]domain.ProviderProfile, error) {
	return s.profiles.ListByStatus(ctx, domain.ApprovalStatusPending)
}

func (s *ApprovalService) decide(ctx context.Context, profileID string, admin *domain.User, action domain.ApprovalAction) (*domain.ProviderProfile, error) {
	var profile *domain.ProviderProfile

	err := s.tx.WithinTx(ctx, func(db repository.DBTX) error {
		profiles := s.profiles.WithTx(db)
		users := s.users.WithTx(db)

		// Re-read inside the transaction so concurrent decisions race
		// on committed state, not on a stale snapshot.
		current, err := profiles.GetByID(ctx, profileID)
		if err != nil {
			return err
		}

		next, ok := domain.NextApprovalStatus(current.ApprovalStatus, action)
		if !ok {
			return apperrors.NewConflict("provider already "+string(current.ApprovalStatus), map[string]any{
				"approval_status": string(current.ApprovalStatus),
			})
		}

		now := time.Now()
		current.ApprovalStatus = next
		current.ApprovedByID = &admin.ID
		current.ApprovedAt = &now
		if err := profiles.Update(ctx, current); err != nil {
			return err
		}

		if next == domain.ApprovalStatusApproved {
			current.User.IsActive = true
			if err := users.Update(ctx, current.User); err != nil {
				return err
			}
		}

		profile = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ApprovalService) publish(ctx context.Context, eventType events.EventType, actorID string, profile *domain.ProviderProfile) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.ProviderDecisionPayload{
			ProfileID:     profile.ID,
			ProviderEmail: profile.User.Email,
			ProviderName:  profile.User.FullName(),
		},
	})
}
