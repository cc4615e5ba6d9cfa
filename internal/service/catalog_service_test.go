package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

type catalogFixture struct {
	svc      *service.CatalogService
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	services *fakeServiceRepo
	approved domain.User
	pending  domain.User
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo(users)
	services := newFakeServiceRepo(users, profiles)

	approved := users.mustAddUser(domain.User{
		Email: "approved@example.com", FirstName: "App", LastName: "Roved",
		Role: domain.RoleProvider, IsActive: true,
	})
	require.NoError(t, profiles.Create(context.Background(), &domain.ProviderProfile{
		UserID:             approved.ID,
		ServiceDescription: "Professional cleaning services",
		ApprovalStatus:     domain.ApprovalStatusApproved,
	}))

	pending := users.mustAddUser(domain.User{
		Email: "pending@example.com", FirstName: "Pen", LastName: "Ding",
		Role: domain.RoleProvider, IsActive: false,
	})
	require.NoError(t, profiles.Create(context.Background(), &domain.ProviderProfile{
		UserID:             pending.ID,
		ServiceDescription: "Professional painting services",
		ApprovalStatus:     domain.ApprovalStatusPending,
	}))

	svc := service.NewCatalogService(service.CatalogDependencies{
		ServiceRepo: services,
		ProfileRepo: profiles,
		Tx:          &fakeTx{},
	})
	return &catalogFixture{
		svc: svc, users: users, profiles: profiles, services: services,
		approved: approved, pending: pending,
	}
}

func validInput() service.ServiceInput {
	return service.ServiceInput{
		Name:        "Deep Cleaning",
		Description: "Full apartment deep cleaning",
		Location:    "Berlin",
		Cost:        80,
	}
}

func TestCreateService_ApprovedProvider(t *testing.T) {
	fx := newCatalogFixture(t)

	created, err := fx.svc.Create(context.Background(), &fx.approved, validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)
	assert.Equal(t, fx.approved.ID, created.ProviderID)
}

func TestCreateService_UnapprovedProviderForbidden(t *testing.T) {
	fx := newCatalogFixture(t)

	_, err := fx.svc.Create(context.Background(), &fx.pending, validInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	services, err := fx.svc.ListOwn(context.Background(), &fx.pending)
	require.NoError(t, err)
	assert.Empty(t, services, "a rejected create must persist nothing")
}

func TestCreateService_InputValidation(t *testing.T) {
	fx := newCatalogFixture(t)

	cases := []struct {
		name  string
		patch func(*service.ServiceInput)
	}{
		{"short name", func(in *service.ServiceInput) { in.Name = "ab" }},
		{"short description", func(in *service.ServiceInput) { in.Description = "too short" }},
		{"short location", func(in *service.ServiceInput) { in.Location = "x" }},
		{"zero cost", func(in *service.ServiceInput) { in.Cost = 0 }},
		{"negative cost", func(in *service.ServiceInput) { in.Cost = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.patch(&input)
			_, err := fx.svc.Create(context.Background(), &fx.approved, input)
			assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
		})
	}
}

func TestUpdateService_OwnershipEnforced(t *testing.T) {
	fx := newCatalogFixture(t)

	created, err := fx.svc.Create(context.Background(), &fx.approved, validInput())
	require.NoError(t, err)

	other := fx.users.mustAddUser(domain.User{
		Email: "other@example.com", Role: domain.RoleProvider, IsActive: true,
	})
	_, err = fx.svc.Update(context.Background(), &other, created.ID, validInput())
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	input := validInput()
	input.Cost = 120
	updated, err := fx.svc.Update(context.Background(), &fx.approved, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, float64(120), updated.Cost)
}

func TestDeleteService_SoftDeletes(t *testing.T) {
	fx := newCatalogFixture(t)

	created, err := fx.svc.Create(context.Background(), &fx.approved, validInput())
	require.NoError(t, err)

	deleted, err := fx.svc.Delete(context.Background(), &fx.approved, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)

	// Inactive services read as not found.
	_, err = fx.svc.Get(context.Background(), created.ID)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	// The row is still there for the owner.
	own, err := fx.svc.ListOwn(context.Background(), &fx.approved)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.False(t, own[0].IsActive)
}

func TestDeleteService_BlockedByPendingRequests(t *testing.T) {
	fx := newCatalogFixture(t)

	created, err := fx.svc.Create(context.Background(), &fx.approved, validInput())
	require.NoError(t, err)
	fx.services.pending[created.ID] = 2

	_, err = fx.svc.Delete(context.Background(), &fx.approved, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	still, err := fx.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, still.IsActive)

	// Once the last pending request resolves, deletion goes through.
	fx.services.pending[created.ID] = 0
	_, err = fx.svc.Delete(context.Background(), &fx.approved, created.ID)
	assert.NoError(t, err)
}

func TestSearch_FiltersAndApprovalGate(t *testing.T) {
	fx := newCatalogFixture(t)

	_, err := fx.svc.Create(context.Background(), &fx.approved, validInput())
	require.NoError(t, err)

	// Seed a service owned by the unapproved provider directly; it must
	// never surface in public search.
	unapprovedSvc := &domain.Service{
		ProviderID:  fx.pending.ID,
		Name:        "Wall Painting",
		Description: "Interior wall painting",
		Location:    "Berlin",
		Cost:        50,
		IsActive:    true,
	}
	require.NoError(t, fx.services.Create(context.Background(), unapprovedSvc))

	results, err := fx.svc.Search(context.Background(), service.ServiceSearchInput{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, fx.approved.ID, results[0].ProviderID)

	location := "berl"
	results, err = fx.svc.Search(context.Background(), service.ServiceSearchInput{Location: &location})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	maxCost := 70.0
	results, err = fx.svc.Search(context.Background(), service.ServiceSearchInput{MaxCost: &maxCost})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_CostFilterValidation(t *testing.T) {
	fx := newCatalogFixture(t)

	negative := -1.0
	_, err := fx.svc.Search(context.Background(), service.ServiceSearchInput{MinCost: &negative})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	minCost, maxCost := 100.0, 50.0
	_, err = fx.svc.Search(context.Background(), service.ServiceSearchInput{MinCost: &minCost, MaxCost: &maxCost})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
