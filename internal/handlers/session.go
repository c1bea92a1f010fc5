package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionRequest selects the adapter to attach to. An unknown or empty
// adapter falls back to the first one available.
type SessionRequest struct {
	Adapter string `json:"adapter" example:"hci0"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List adapters
// @Tags         discovery
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, adapters"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/adapters [get]
// @Security     BearerAuth
func (h *Handler) listAdapters(c *gin.Context) {
	adapters, err := h.services.ListAdapters(c.Request.Context())
	if err != nil {
		h.respondError(c, "adapters_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(adapters), "adapters": adapters})
}

// @Summary      Scan devices behind an adapter
// @Tags         discovery
// @Produce      json
// @Param        adapter  path  string  true  "Adapter name"
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/adapters/{adapter}/devices [get]
// @Security     BearerAuth
func (h *Handler) scanDevices(c *gin.Context) {
	adapter := c.Param("adapter")
	devices, err := h.services.ScanDevices(c.Request.Context(), adapter)
	if err != nil {
		h.respondError(c, "devices_scan_failed", err, "adapter", adapter)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adapter": adapter, "count": len(devices), "devices": devices})
}

// @Summary      Activate session
// @Description  Attaches the status stream to the adapter. Switching adapters drops all cached statuses.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  SessionRequest  false  "Adapter to attach to"
// @Success      200  {object}  service.SessionInfo
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/session [post]
// @Security     BearerAuth
func (h *Handler) activateSession(c *gin.Context) {
	var req SessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}
	info, err := h.services.Activate(c.Request.Context(), req.Adapter)
	if err != nil {
		h.respondError(c, "session_activate_failed", err, "adapter", req.Adapter)
		return
	}
	c.JSON(http.StatusOK, info)
}

// @Summary      Get session
// @Tags         session
// @Produce      json
// @Success      200  {object}  service.SessionInfo
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session [get]
// @Security     BearerAuth
func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Current())
}

// @Summary      Deactivate session
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session [delete]
// @Security     BearerAuth
func (h *Handler) deactivateSession(c *gin.Context) {
	if err := h.services.Deactivate(c.Request.Context()); err != nil {
		h.respondError(c, "session_deactivate_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDetached})
}

// @Summary      Re-attach a dropped status stream
// @Tags         session
// @Produce      json
// @Success      200  {object}  service.SessionInfo
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/session/reevaluate [post]
// @Security     BearerAuth
func (h *Handler) reevaluateSession(c *gin.Context) {
	info, err := h.services.Reevaluate(c.Request.Context())
	if err != nil {
		h.respondError(c, "session_reevaluate_failed", err, "adapter", info.Adapter)
		return
	}
	c.JSON(http.StatusOK, info)
}
