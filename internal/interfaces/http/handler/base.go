package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/infrastructure/logger"
	"github.com/repairshop/erp/internal/infrastructure/telemetry"
	"github.com/repairshop/erp/internal/interfaces/http/dto"
	"github.com/repairshop/erp/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const validationFailedMessage = "The given data was invalid."

// BaseHandler provides the response and error mapping shared by handlers
type BaseHandler struct {
	// debug exposes internal error details in 500 responses
	debug bool
}

// principal returns the authenticated caller. The JWT middleware guarantees
// it on every /api/v1 route.
func (h *BaseHandler) principal(c *gin.Context) (middleware.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.ErrCodeUnauthorized, "Authentication required", middleware.GetRequestID(c)))
		return middleware.Principal{}, false
	}
	return p, true
}

// pathID parses the :id path parameter, answering 404 when it is not a UUID
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusNotFound, shared.CodeNotFound, "Salary record not found")
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BindError answers a failed ShouldBind call
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	if fields := middleware.ValidationErrorMap(err); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(validationFailedMessage, requestID, fields))
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		// embedded structs report "Outer.field"; clients only see the JSON key
		field := typeErr.Field[strings.LastIndex(typeErr.Field, ".")+1:]
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(validationFailedMessage, requestID,
			map[string][]string{field: {"Must be of type " + typeErr.Type.String()}}))
		return
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBodyTooLarge, "Request body exceeds maximum allowed size")
		return
	}

	if errors.Is(err, io.EOF) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is required")
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed JSON request body")
}

// HandleError maps service errors to responses: field errors to 422, domain
// errors by code, anything else to an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var fields shared.ValidationErrors
	if errors.As(err, &fields) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(validationFailedMessage, requestID, fields))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status == http.StatusInternalServerError {
			h.internalError(c, err)
			return
		}
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message, requestID))
		return
	}

	h.internalError(c, err)
}

func (h *BaseHandler) internalError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	logger.L(ctx).Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.String("trace_id", telemetry.GetTraceID(ctx)),
		zap.Error(err))

	resp := dto.Response{Success: false, Message: dto.InternalErrorMessage}
	if h.debug {
		resp.Error = &dto.ErrorInfo{
			Code:      dto.ErrCodeInternal,
			Detail:    err.Error(),
			RequestID: middleware.GetRequestID(c),
		}
	}
	c.JSON(http.StatusInternalServerError, resp)
}
