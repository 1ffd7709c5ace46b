package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Приложение охраняемого пользователя
	sos := api.Group("/sos", APIKeyAuthMiddleware(h.apiKeys, h.logger))
	{
		sos.POST("", h.triggerSOS)
		sos.GET("/:id", h.getIncident)
		sos.PATCH("/:id/telemetry", h.updateTelemetry)
	}

	// Дашборд и журнал реагирования сотрудников
	responder := api.Group("", ResponderAuthMiddleware(h.jwtSecret, h.officers, h.logger))
	{
		responder.GET("/dashboard/incidents", h.dashboardIncidents)
		responder.GET("/dashboard/stream", h.dashboardStream)

		responder.GET("/incidents", h.listIncidents)
		responder.GET("/incidents/:id/responses", h.listResponses)
		responder.POST("/incidents/:id/responses", h.recordAction)
		responder.GET("/incidents/:id/actions", h.availableActions)
		responder.POST("/incidents/:id/resolve", h.resolveIncident)
	}

	api.GET("/routes/score", h.routeScore)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
