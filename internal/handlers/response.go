package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/services"
	"github.com/harentsoaR/ayursutra-api/internal/utils"
)

// AppError is an error with the HTTP status and the message the client sees.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: err}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message, Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *AppError   `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondOK(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, data)
}

// respondError writes the error envelope, translating service errors first.
// Server-side failures are logged; their cause never reaches the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		h.log.Error(err, "request failed", "method", c.Request.Method, "path", c.FullPath())
	}
	c.AbortWithStatusJSON(appErr.Code, Response{Success: false, Error: appErr})
}

var statusByError = []struct {
	err    error
	status int
}{
	{services.ErrValidation, http.StatusBadRequest},
	{services.ErrInvalidRole, http.StatusBadRequest},
	{services.ErrImmutableField, http.StatusBadRequest},
	{services.ErrInvalidResetToken, http.StatusBadRequest},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrTokenRevoked, http.StatusUnauthorized},
	{services.ErrRequiresRecentLogin, http.StatusUnauthorized},
	{utils.ErrInvalidToken, http.StatusUnauthorized},
	{services.ErrNotPractitioner, http.StatusForbidden},
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrProfileNotFound, http.StatusNotFound},
	{services.ErrPatientNotFound, http.StatusNotFound},
	{services.ErrPractitionerNotFound, http.StatusNotFound},
	{services.ErrSessionNotFound, http.StatusNotFound},
	{services.ErrNotificationNotFound, http.StatusNotFound},
	{services.ErrNoteNotFound, http.StatusNotFound},
	{services.ErrProgressNotFound, http.StatusNotFound},
	{services.ErrEmailInUse, http.StatusConflict},
	{services.ErrDuplicateFeedback, http.StatusConflict},
	{services.ErrChatbotUpstream, http.StatusBadGateway},
	{services.ErrChatbotUnavailable, http.StatusServiceUnavailable},
}

func toAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range statusByError {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.err.Error()
		// 400s carry the validation detail.
		if m.status == http.StatusBadRequest {
			msg = err.Error()
		}
		return &AppError{Code: m.status, Message: msg, Err: err}
	}
	return Internal(err)
}
