package dto

import (
	"net/http"

	"github.com/repairshop/erp/internal/domain/shared"
)

// Transport error codes raised by middleware and handlers.
// Domain codes (VALIDATION_ERROR, NOT_FOUND, ...) are passed through unchanged.
const (
	ErrCodeInternal       = "ERR_INTERNAL"
	ErrCodeBadRequest     = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON    = "ERR_INVALID_JSON"
	ErrCodeUnauthorized   = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired   = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid   = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked   = "ERR_TOKEN_REVOKED"
	ErrCodeRateLimited    = "ERR_RATE_LIMITED"
	ErrCodeBodyTooLarge   = "ERR_BODY_TOO_LARGE"
	ErrCodeUnavailable    = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeRouteNotFound  = "ERR_ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllow = "ERR_METHOD_NOT_ALLOWED"
)

// Domain codes surfaced by the payroll service
const (
	CodeAlreadyPaid        = "ALREADY_PAID"
	CodeInvalidUser        = "INVALID_USER"
	CodePayslipUnavailable = "PAYSLIP_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	ErrCodeRateLimited:    http.StatusTooManyRequests,
	ErrCodeBodyTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:    http.StatusServiceUnavailable,
	ErrCodeRouteNotFound:  http.StatusNotFound,
	ErrCodeMethodNotAllow: http.StatusMethodNotAllowed,

	shared.CodeValidation:   http.StatusUnprocessableEntity,
	shared.CodeNotFound:     http.StatusNotFound,
	shared.CodeConflict:     http.StatusConflict,
	shared.CodeInvalidState: http.StatusUnprocessableEntity,
	CodeAlreadyPaid:         http.StatusUnprocessableEntity,
	CodeInvalidUser:         http.StatusUnprocessableEntity,
	CodePayslipUnavailable:  http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
