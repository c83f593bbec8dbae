package core

import (
	"errors"
	"strings"
	"testing"

	"assettrack/internal/types"
)

type validatorTestInput struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"omitempty,email"`
	Status   string `validate:"required,oneof=available active repair decommissioned"`
	Quantity int    `validate:"gte=0"`
}

func TestValidateStruct_Valid(t *testing.T) {
	v := NewValidator()
	err := v.ValidateStruct(validatorTestInput{
		Name:   "MacBook Pro",
		Email:  "it@example.com",
		Status: "available",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateStruct_MissingRequired(t *testing.T) {
	v := NewValidator()
	err := v.ValidateStruct(validatorTestInput{Status: "available"})

	appErr := asValidationError(t, err)
	if appErr.Details["Name"] != "is required" {
		t.Errorf("Name detail = %v", appErr.Details["Name"])
	}
}

func TestValidateStruct_MultipleFailures(t *testing.T) {
	v := NewValidator()
	err := v.ValidateStruct(validatorTestInput{
		Name:     "x",
		Email:    "not-an-email",
		Status:   "retired",
		Quantity: -1,
	})

	appErr := asValidationError(t, err)
	if len(appErr.Details) != 4 {
		t.Fatalf("expected 4 field details, got %d: %v", len(appErr.Details), appErr.Details)
	}
	if appErr.Details["Name"] != "must be at least 2" {
		t.Errorf("Name detail = %v", appErr.Details["Name"])
	}
	if appErr.Details["Email"] != "must be a valid email address" {
		t.Errorf("Email detail = %v", appErr.Details["Email"])
	}
	oneof, _ := appErr.Details["Status"].(string)
	if !strings.HasPrefix(oneof, "must be one of:") {
		t.Errorf("Status detail = %v", appErr.Details["Status"])
	}
	if appErr.Details["Quantity"] != "must be >= 0" {
		t.Errorf("Quantity detail = %v", appErr.Details["Quantity"])
	}
}

func asValidationError(t *testing.T, err error) *types.AppError {
	t.Helper()
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T (%v)", err, err)
	}
	if appErr.Code != types.ErrCodeValidationInvalidField {
		t.Errorf("code = %s", appErr.Code)
	}
	return appErr
}
