package core

import (
	"github.com/go-playground/validator/v10"

	"assettrack/internal/types"
)

// Validator wraps go-playground/validator to translate tag failures into
// structured AppErrors with per-field details.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with domain rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &Validator{validate: v}
}

// ValidateStruct runs tag validation on the given struct. On failure it
// returns an AppError with code "validation_invalid_field" and a details map
// keyed by field name.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return types.NewAppError(types.ErrCodeValidationInvalidField, "request validation failed", err)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldErrorMessage(fe)
	}
	return types.NewAppErrorWithDetails(
		types.ErrCodeValidationInvalidField,
		"request validation failed",
		err,
		details,
	)
}

// fieldErrorMessage produces a short human-readable reason for one failed tag.
func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "failed validation rule: " + fe.Tag()
	}
}
