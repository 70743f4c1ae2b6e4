package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hotelagreement/backend/internal/domain/agreement"
	"github.com/hotelagreement/backend/internal/interfaces/http/dto"
	"github.com/hotelagreement/backend/internal/interfaces/http/middleware"
)

// genericErrorMessage replaces the message of every server-side failure
const genericErrorMessage = "An unexpected error occurred"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	h.Error(c, http.StatusBadRequest, code, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 response with the generic message
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, genericErrorMessage)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// HandleError converts pipeline errors to HTTP responses. Client-side
// failures keep their message; server-side failures get a generic one.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := agreement.CodeOf(err)
	if code == "" {
		h.InternalError(c)
		return
	}

	message := genericErrorMessage
	if dto.ExposesMessage(code) {
		message = agreement.MessageOf(err)
	}
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}
