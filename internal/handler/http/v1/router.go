package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	authRequired := AuthMiddleware(h.tokens, h.logger)
	adminOnly := RequireAdmin()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", authRequired, h.me)
	}

	// Чтение ленты доступно без токена
	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/stats/summary", h.getStats)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("", authRequired, h.createIncident)
		incidents.PUT("/:id", authRequired, h.updateIncident)
		incidents.DELETE("/:id", authRequired, adminOnly, h.deleteIncident)
		incidents.POST("/:id/verify", authRequired, h.toggleVerification)
		incidents.GET("/:id/verify/status", authRequired, h.getVerificationStatus)
		incidents.PUT("/:id/status", authRequired, adminOnly, h.updateStatus)
		incidents.PUT("/:id/assign", authRequired, adminOnly, h.assignIncident)
	}

	contacts := api.Group("/emergency-contacts", authRequired)
	{
		contacts.GET("", h.listContacts)
		contacts.POST("", h.createContact)
		contacts.PUT("/:id", h.updateContact)
		contacts.DELETE("/:id", h.deleteContact)
	}

	sos := api.Group("/sos", authRequired)
	{
		sos.POST("/trigger", h.triggerSOS)
		sos.GET("/my-alerts", h.myAlerts)
		sos.GET("/all", adminOnly, h.activeAlerts)
		sos.PUT("/:id/cancel", h.cancelSOS)
		sos.PUT("/:id/resolve", adminOnly, h.resolveSOS)
	}

	notifications := api.Group("/notifications", authRequired)
	{
		notifications.GET("", h.listNotifications)
		notifications.PUT("/read-all", h.markAllNotificationsRead)
		notifications.PUT("/:id/read", h.markNotificationRead)
		notifications.DELETE("/:id", h.deleteNotification)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
