package handlers

import (
	"errors"
	"net/http"

	"climate_control/internal/climate"
	"climate_control/internal/link"
	"climate_control/internal/models"
	"climate_control/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error to the HTTP status the API reports for it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, climate.ErrOutOfRange),
		errors.Is(err, climate.ErrUnsupportedMode),
		errors.Is(err, models.ErrInvalidCommand),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoStatus),
		errors.Is(err, link.ErrUnknownDevice):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoActiveAdapter),
		errors.Is(err, service.ErrNoAdapters),
		errors.Is(err, service.ErrSessionEnded),
		errors.Is(err, service.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, link.ErrNotConnected),
		errors.Is(err, link.ErrTimeout),
		errors.Is(err, link.ErrRejected),
		errors.Is(err, link.ErrClosed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondError picks the status from err and reports err's text to the client.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}
