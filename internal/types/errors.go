package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Handlers and services use these instead of
// hardcoded strings; the prefix determines the HTTP status.
const (
	// Validation (400)
	ErrCodeValidationInvalidJSON         ErrorCode = "validation_invalid_json"
	ErrCodeValidationMissingField        ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidField        ErrorCode = "validation_invalid_field"
	ErrCodeValidationDecommissionReason  ErrorCode = "validation_decommission_reason_too_short"
	ErrCodeValidationInvalidStatus       ErrorCode = "validation_invalid_status"
	ErrCodeValidationImportRow           ErrorCode = "validation_import_row_invalid"

	// Auth (401)
	ErrCodeAuthTokenMissing ErrorCode = "auth_token_missing"
	ErrCodeAuthTokenInvalid ErrorCode = "auth_token_invalid"
	ErrCodeAuthTokenExpired ErrorCode = "auth_token_expired"
	ErrCodeAuthInvalidCreds ErrorCode = "auth_invalid_credentials"
	ErrCodeAuthInactiveUser ErrorCode = "auth_account_not_active"

	// Permission (403)
	ErrCodePermissionRole ErrorCode = "permission_role_insufficient"

	// Not Found (404)
	ErrCodeNotFoundAsset    ErrorCode = "not_found_asset"
	ErrCodeNotFoundEmployee ErrorCode = "not_found_employee"
	ErrCodeNotFoundUser     ErrorCode = "not_found_user"

	// Conflict (409)
	ErrCodeConflictInvalidTransition ErrorCode = "conflict_invalid_transition"
	ErrCodeConflictSerialExists      ErrorCode = "conflict_serial_number_exists"
	ErrCodeConflictAssetTagExists    ErrorCode = "conflict_asset_tag_exists"
	ErrCodeConflictEmailExists       ErrorCode = "conflict_employee_email_exists"

	// Internal/Upstream (500/502)
	ErrCodeInternalDB            ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected    ErrorCode = "internal_unexpected_error"
	ErrCodeUpstreamEmailProvider ErrorCode = "upstream_email_provider_unavailable"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Returns 500 for unrecognized codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case s == string(ErrCodeAuthInactiveUser):
		return http.StatusForbidden
	case strings.HasPrefix(s, "auth_"):
		return http.StatusUnauthorized
	case strings.HasPrefix(s, "permission_"):
		return http.StatusForbidden
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case strings.HasPrefix(s, "conflict_"):
		return http.StatusConflict
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type. All domain and handler
// errors are expressed as AppError to enable consistent formatting, HTTP
// status mapping, and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewAppErrorWithDetails creates a new AppError carrying structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{Code: code, Message: message, Err: err, Details: details}
}
