package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"validation error maps to 400", ErrCodeValidation, http.StatusBadRequest},
		{"not found maps to 404", ErrCodeNotFound, http.StatusNotFound},
		{"already exists maps to 409", ErrCodeAlreadyExists, http.StatusConflict},
		{"concurrency conflict maps to 409", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"invoice exists maps to 409", ErrCodeInvoiceExists, http.StatusConflict},
		{"duplicate run maps to 409", ErrCodeDuplicateRun, http.StatusConflict},
		{"business rule maps to 422", ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{"lease not billable maps to 422", ErrCodeLeaseNotBillable, http.StatusUnprocessableEntity},
		{"invalid state maps to 422", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"unauthorized maps to 401", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"forbidden maps to 403", ErrCodeForbidden, http.StatusForbidden},
		{"internal maps to 500", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown code falls back to 500", "ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"passes through canonical code", ErrCodeNotFound, ErrCodeNotFound},
		{"maps domain not found", "NOT_FOUND", ErrCodeNotFound},
		{"maps concurrency conflict", "CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"maps invalid lease state", "INVALID_LEASE_STATE", ErrCodeInvalidState},
		{"maps occupied unit to conflict", "UNIT_ALREADY_OCCUPIED", ErrCodeConflict},
		{"maps missing primary tenant", "MISSING_PRIMARY_TENANT", ErrCodeLeaseNotBillable},
		{"maps missing payer", "NO_PAYER_DESIGNATED", ErrCodeLeaseNotBillable},
		{"maps term overlap to conflict", "TERM_OVERLAP", ErrCodeConflict},
		{"maps existing invoice", "INVOICE_EXISTS", ErrCodeInvoiceExists},
		{"maps duplicate run", "DUPLICATE_RUN", ErrCodeDuplicateRun},
		{"maps nothing to bill", "NOTHING_TO_BILL", ErrCodeBusinessRule},
		{"maps overpayment", "OVERPAYMENT", ErrCodeBusinessRule},
		{"maps billed statement to conflict", "STATEMENT_ALREADY_BILLED", ErrCodeConflict},
		{"keeps unrecognized code as-is", "SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.code))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	t.Run("normalizes legacy code and stamps timestamp", func(t *testing.T) {
		resp := NewErrorResponse("NOT_FOUND", "lease not found")

		assert.False(t, resp.Success)
		assert.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "lease not found", resp.Error.Message)
		assert.False(t, resp.Error.Timestamp.IsZero())
	})
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	t.Run("includes request ID", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeInternal, "boom", "req-123")

		assert.False(t, resp.Success)
		assert.Equal(t, "req-123", resp.Error.RequestID)
	})
}

func TestNewValidationErrorResponse(t *testing.T) {
	t.Run("carries field details", func(t *testing.T) {
		details := []ValidationDetail{
			{Field: "rent_due_day", Message: "must be between 1 and 28"},
		}
		resp := NewValidationErrorResponse("validation failed", "req-456", details)

		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-456", resp.Error.RequestID)
		assert.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "rent_due_day", resp.Error.Details[0].Field)
	})
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	t.Run("computes total pages with remainder", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]string{"a"}, 21, 1, 10)

		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Meta)
		assert.Equal(t, int64(21), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("computes exact total pages", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]string{"a"}, 20, 2, 10)

		assert.Equal(t, 2, resp.Meta.TotalPages)
	})
}
