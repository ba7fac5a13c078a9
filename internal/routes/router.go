package routes

import (
	"github.com/annie-elequin/timetracking/internal/handlers"
	"github.com/annie-elequin/timetracking/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes инициализирует все маршруты приложения.
func SetupRoutes(r *gin.Engine) {
	// --- Публичные маршруты ---
	// Вход через Google, статус аутентификации и health check не требуют сессии.
	RegisterAuthRoutes(r)
	r.GET("/health", handlers.HealthHandler)

	// --- Защищенная группа маршрутов ---
	// Все, что ходит в календарь или в базу от имени пользователя,
	// закрыто сессионной cookie.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
