package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

var validate = newValidate()

// newValidate builds a validator whose field names come from the json
// tag, so error details carry the same keys clients send.
func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks struct tags on a request payload and converts
// violations into a field-keyed validation error.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := map[string]any{}
	for _, fe := range fieldErrs {
		details[fe.Field()] = []string{fieldMessage(fe)}
	}
	return apperrors.NewValidationError("validation failed", details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Must be a valid email address."
	case "min":
		return "Must be at least " + fe.Param() + " characters long."
	case "oneof":
		return "Must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "gt":
		return "Must be greater than " + fe.Param() + "."
	case "uuid4":
		return "Must be a valid UUID."
	}
	return "Invalid value."
}
