// timetracking/internal/routes/api_routes.go
package routes

import (
	"github.com/annie-elequin/timetracking/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все маршруты API, требующие аутентификации.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		// --- СОБЫТИЯ ---
		events := apiGroup.Group("/events")
		{
			// Синхронизация окна календаря + ответ.
			events.GET("", handlers.GetEventsHandler)
			// История из базы, без похода в Google.
			events.GET("/stored", handlers.ListStoredEventsHandler)
			events.GET("/tags", handlers.ListTagsHandler)
		}

		// --- ОТЧЕТ ---
		report := apiGroup.Group("/report")
		{
			report.GET("", handlers.GetReportHandler)
			report.GET("/export", handlers.ExportReportHandler)
		}
	}

	// Обновление access token из сохраненного refresh token.
	api.POST("/auth/refresh", handlers.RefreshHandler)
}
