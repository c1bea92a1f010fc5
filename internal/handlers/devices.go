package handlers

import (
	"io"
	"net/http"
	"strconv"

	"climate_control/internal/models"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK            = "ok"
	statusConnecting    = "connecting"
	statusDisconnecting = "disconnecting"
	statusDetached      = "detached"
	statusAccepted      = "accepted"

	errInvalidBodyPref = "invalid body: "
	errInvalidLimit    = "invalid 'limit'; use a positive integer"
)

// SetTemperatureRequest is the payload of POST /devices/{id}/temperature.
type SetTemperatureRequest struct {
	// Target in whole degrees Fahrenheit, 66..92 with the default mode table
	TargetF *int `json:"target_f" binding:"required" example:"72"`
}

// @Summary      Connect device
// @Description  Asks the link to connect. The device's first status push confirms it.
// @Tags         devices
// @Produce      json
// @Param        id  path  string  true  "Device id"
// @Success      202  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/devices/{id}/connect [post]
// @Security     BearerAuth
func (h *Handler) connectDevice(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Connect(c.Request.Context(), id); err != nil {
		h.respondError(c, "device_connect_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusConnecting, "device_id": id})
}

// @Summary      Disconnect device
// @Tags         devices
// @Produce      json
// @Param        id  path  string  true  "Device id"
// @Success      202  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/devices/{id}/disconnect [post]
// @Security     BearerAuth
func (h *Handler) disconnectDevice(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Disconnect(c.Request.Context(), id); err != nil {
		h.respondError(c, "device_disconnect_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusDisconnecting, "device_id": id})
}

// @Summary      Set target temperature
// @Description  Switches mode first when the target lies in another mode's range, restoring timer and fan.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Device id"
// @Param        body  body  SetTemperatureRequest  true  "Target"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/devices/{id}/temperature [post]
// @Security     BearerAuth
func (h *Handler) setTemperature(c *gin.Context) {
	id := c.Param("id")
	var req SetTemperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.SetTemperature(c.Request.Context(), id, *req.TargetF); err != nil {
		h.respondError(c, "device_set_temperature_failed", err, "device_id", id, "target_f", *req.TargetF, "user_id", userID(c))
		return
	}
	if h.log != nil {
		h.log.Infow("device_set_temperature", "device_id", id, "target_f", *req.TargetF, "user_id", userID(c))
	}
	c.JSON(http.StatusOK, gin.H{"status": statusAccepted, "device_id": id, "target_f": *req.TargetF})
}

// @Summary      Send raw command
// @Description  Body is a tagged command, e.g. {"type":"SetFan","content":{"type":"Percent","value":40}}
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Device id"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/devices/{id}/command [post]
// @Security     BearerAuth
func (h *Handler) sendCommand(c *gin.Context) {
	id := c.Param("id")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	cmd, err := models.UnmarshalCommand(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.SendCommand(c.Request.Context(), id, cmd); err != nil {
		h.respondError(c, "device_command_failed", err, "device_id", id, "kind", cmd.Kind(), "user_id", userID(c))
		return
	}
	if h.log != nil {
		h.log.Infow("device_command", "device_id", id, "kind", cmd.Kind(), "user_id", userID(c))
	}
	c.JSON(http.StatusOK, gin.H{"status": statusAccepted, "device_id": id, "kind": cmd.Kind()})
}

// @Summary      Get device status
// @Description  Last status pushed by the device since the session attached
// @Tags         devices
// @Produce      json
// @Param        id  path  string  true  "Device id"
// @Success      200  {object}  service.StatusView
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/devices/{id}/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	id := c.Param("id")
	view, err := h.services.GetStatus(id)
	if err != nil {
		h.respondError(c, "device_get_status_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      List cached statuses
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, statuses"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/statuses [get]
// @Security     BearerAuth
func (h *Handler) listStatuses(c *gin.Context) {
	views := h.services.ListStatuses()
	c.JSON(http.StatusOK, gin.H{"count": len(views), "statuses": views})
}

// @Summary      Device status history
// @Tags         devices
// @Produce      json
// @Param        id     path   string  true   "Device id"
// @Param        limit  query  int     false  "Max records, newest first"  example(50)
// @Success      200  {object}  map[string]interface{}  "count, history"
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/devices/{id}/history [get]
// @Security     BearerAuth
func (h *Handler) getHistory(c *gin.Context) {
	id := c.Param("id")
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimit})
			return
		}
		limit = n
	}
	recs, err := h.services.Recent(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, "device_history_failed", err, "device_id", id, "limit", limit)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(recs), "history": recs})
}
