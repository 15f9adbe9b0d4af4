package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeLeaseNotBillable is used when a lease cannot be activated or billed
	ErrCodeLeaseNotBillable = "ERR_LEASE_NOT_BILLABLE"
	// ErrCodeInvoiceExists is used when an invoice already covers the period
	ErrCodeInvoiceExists = "ERR_INVOICE_EXISTS"
	// ErrCodeDuplicateRun is used when an invoice run overlaps an active one
	ErrCodeDuplicateRun = "ERR_DUPLICATE_RUN"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:     http.StatusUnprocessableEntity,
	ErrCodeLeaseNotBillable: http.StatusUnprocessableEntity,

	// Duplicate billing artifacts -> 409 Conflict
	ErrCodeInvoiceExists: http.StatusConflict,
	ErrCodeDuplicateRun:  http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to standardized API codes.
// Domain packages raise short codes; the HTTP layer normalizes them here.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	// Lease lifecycle
	"INVALID_LEASE_STATE":    ErrCodeInvalidState,
	"UNIT_ALREADY_OCCUPIED":  ErrCodeConflict,
	"MISSING_PRIMARY_TENANT": ErrCodeLeaseNotBillable,
	"NO_PAYER_DESIGNATED":    ErrCodeLeaseNotBillable,
	"NO_TERM_FOR_START_DATE": ErrCodeLeaseNotBillable,
	"INVALID_RENT_DUE_DAY":   ErrCodeLeaseNotBillable,
	"NO_TERM_FOUND":          ErrCodeBusinessRule,
	"TERM_OVERLAP":           ErrCodeConflict,
	"INVALID_DATE_RANGE":     ErrCodeInvalidInput,

	// Billing
	"INVOICE_EXISTS":           ErrCodeInvoiceExists,
	"DUPLICATE_RUN":            ErrCodeDuplicateRun,
	"NOTHING_TO_BILL":          ErrCodeBusinessRule,
	"EMPTY_INVOICE":            ErrCodeBusinessRule,
	"OVERPAYMENT":              ErrCodeBusinessRule,
	"INVALID_INVOICE_STATE":    ErrCodeInvalidState,
	"INVALID_RUN_STATE":        ErrCodeInvalidState,
	"INVALID_PRORATION_RANGE":  ErrCodeInvalidInput,
	"INVALID_RATE_PLAN":        ErrCodeBusinessRule,
	"NEGATIVE_CONSUMPTION":     ErrCodeInvalidInput,
	"STATEMENT_ALREADY_BILLED": ErrCodeConflict,
	"STATEMENT_ALREADY_FINAL":  ErrCodeConflict,
	"STATEMENT_FINAL_EXISTS":   ErrCodeConflict,
	"STATEMENT_NOT_FINAL":      ErrCodeBusinessRule,
	"STATEMENT_NOT_BILLED":     ErrCodeBusinessRule,
	"INVALID_READINGS":         ErrCodeInvalidInput,
	"INVALID_AMOUNT":           ErrCodeInvalidInput,
	"INVALID_STATEMENT":        ErrCodeInvalidInput,
	"EMPTY_CREDIT_NOTE":        ErrCodeInvalidInput,
	"UNKNOWN_INVOICE_LINE":     ErrCodeInvalidInput,
	"INVALID_CREDIT_AMOUNT":    ErrCodeInvalidInput,
	"CREDIT_EXCEEDS_LINE":      ErrCodeBusinessRule,
	"CREDIT_EXCEEDS_BALANCE":   ErrCodeBusinessRule,
	"CREDIT_ALREADY_APPLIED":   ErrCodeConflict,
	"INVOICE_MISMATCH":         ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
