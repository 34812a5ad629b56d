package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Ok writes a successful envelope.
func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

// Error writes a failure envelope with the HTTP status as code.
func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// Fail maps err onto a status and writes the failure envelope.
func Fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger := logging.FromContext(c.Request.Context())
		logger.Error().Err(err).Msg("Request failed")
	}
	Error(c, status, err.Error(), map[string]any{"request_id": c.GetString(requestIDKey)})
}

func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrAccountNotFound), apperrors.Is(err, apperrors.ErrDataNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrNotPropAccount), apperrors.Is(err, apperrors.ErrInputValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
