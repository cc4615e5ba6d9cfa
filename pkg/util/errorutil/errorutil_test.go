package util_test

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

func TestToDomainError_PassthroughAndWrap(t *testing.T) {
	err := apperrors.NewConflict("provider already APPROVED", nil)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(wrapped).Code)
}

func TestToDomainError_NoRowsBecomesNotFound(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(pgx.ErrNoRows).Code)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(sql.ErrNoRows).Code)
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	domainErr := apperrors.ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.Equal(t, "internal server error", domainErr.Message)
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, apperrors.ToDomainError(nil))
}

func TestIsCode(t *testing.T) {
	err := apperrors.NewForbidden("nope")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.False(t, apperrors.IsCode(err, "NOT_FOUND"))
	assert.False(t, apperrors.IsCode(errors.New("plain"), "FORBIDDEN"))
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.NewValidationError("bad", nil), http.StatusBadRequest},
		{apperrors.NewUnauthorized("no"), http.StatusUnauthorized},
		{apperrors.NewForbidden("no"), http.StatusForbidden},
		{apperrors.NewNotFound("service", nil), http.StatusNotFound},
		{apperrors.NewConflict("state", nil), http.StatusConflict},
		{apperrors.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, apperrors.ToDomainError(tc.err).HTTPStatus)
	}
}
