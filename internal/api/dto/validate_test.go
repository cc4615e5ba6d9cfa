package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

func TestValidate_RegisterRequest(t *testing.T) {
	valid := dto.RegisterRequest{
		Email: "jane@example.com", Password: "password123",
		FirstName: "Jane", LastName: "Doe", Role: "REGULAR",
	}
	assert.NoError(t, dto.Validate(valid))

	bad := valid
	bad.Email = "not-an-email"
	err := dto.Validate(bad)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "email")

	bad = valid
	bad.Password = "short"
	err = dto.Validate(bad)
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "password")

	bad = valid
	bad.Role = "ADMIN"
	err = dto.Validate(bad)
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "role")
}

func TestValidate_CreateRequestRequest(t *testing.T) {
	assert.NoError(t, dto.Validate(dto.CreateRequestRequest{
		ServiceID: "b2a3f0d8-5b0c-4f55-9b1a-9a4f9a1a2b3c",
	}))

	err := dto.Validate(dto.CreateRequestRequest{ServiceID: "not-a-uuid"})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "service_id")
}

func TestValidate_DetailKeysMatchJSONTags(t *testing.T) {
	err := dto.Validate(dto.CreateRequestRequest{ServiceID: "not-a-uuid"})
	require.Error(t, err)
	details := apperrors.ToDomainError(err).Details
	assert.Equal(t, map[string]any{
		"service_id": []string{"Must be a valid UUID."},
	}, details)

	err = dto.Validate(dto.ChangePasswordRequest{NewPassword: "short"})
	require.Error(t, err)
	details = apperrors.ToDomainError(err).Details
	assert.Contains(t, details, "current_password")
	assert.Contains(t, details, "new_password")
}

func TestValidate_ServicePayload(t *testing.T) {
	assert.NoError(t, dto.Validate(dto.ServicePayload{
		Name: "Deep Cleaning", Description: "Full apartment deep cleaning",
		Location: "Berlin", Cost: 80,
	}))

	err := dto.Validate(dto.ServicePayload{})
	require.Error(t, err)
	details := apperrors.ToDomainError(err).Details
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "description")
	assert.Contains(t, details, "location")
	assert.Contains(t, details, "cost")
}
