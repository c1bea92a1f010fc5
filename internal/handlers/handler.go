package handlers

import (
	"climate_control/internal/logger"
	"climate_control/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live status stream: /ws?device=<id>&interval=2s
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerSessionRoutes(api)
		h.registerDeviceRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	api.GET("/adapters", h.listAdapters)
	api.GET("/adapters/:adapter/devices", h.scanDevices)

	session := api.Group("/session")
	{
		// Body example: {"adapter":"hci0"}
		session.POST("", h.activateSession)
		session.GET("", h.getSession)
		session.DELETE("", h.deactivateSession)
		session.POST("/reevaluate", h.reevaluateSession)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	api.GET("/statuses", h.listStatuses)

	devices := api.Group("/devices/:id")
	{
		devices.POST("/connect", h.connectDevice)
		devices.POST("/disconnect", h.disconnectDevice)
		// Body example: {"target_f":72}
		devices.POST("/temperature", h.setTemperature)
		// Body example: {"type":"Button","content":"Cool"}
		devices.POST("/command", h.sendCommand)
		devices.GET("/status", h.getStatus)
		devices.GET("/history", h.getHistory)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
