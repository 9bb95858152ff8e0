package dto

import "github.com/repairshop/erp/internal/domain/shared"

// InternalErrorMessage is the only detail a 500 carries outside debug mode
const InternalErrorMessage = "An internal error occurred"

// Response is the envelope of every JSON response
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   *ErrorInfo          `json:"error,omitempty"`
	Meta    *Meta               `json:"meta,omitempty"`
}

// ErrorInfo identifies a failure
type ErrorInfo struct {
	Code      string `json:"code"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewMessageResponse creates a success response carrying a message and optional data
func NewMessageResponse(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// NewPaginatedResponse unwraps a paginated result into data plus meta
func NewPaginatedResponse[T any](page *shared.Paginated[T]) Response {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return Response{
		Success: true,
		Data:    items,
		Meta: &Meta{
			Total:      page.Total,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success: false,
		Message: message,
		Error:   &ErrorInfo{Code: code, RequestID: requestID},
	}
}

// NewValidationErrorResponse creates a 422 body with field-keyed messages
func NewValidationErrorResponse(message, requestID string, errors map[string][]string) Response {
	resp := NewErrorResponse(shared.CodeValidation, message, requestID)
	resp.Errors = errors
	return resp
}

// GenerateResponse is the body of a bulk generation run
type GenerateResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Count   int      `json:"count"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
	Warning string   `json:"warning,omitempty"`
}
