package routes

import (
	"github.com/annie-elequin/timetracking/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes регистрирует публичные маршруты для аутентификации.
// Эти маршруты не требуют middleware для проверки сессии.
func RegisterAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")
	{
		// Редирект на экран согласия Google.
		authGroup.GET("/google", handlers.GoogleLoginHandler)

		// Обратный вызов после согласия: обмен кода на учетные данные.
		authGroup.GET("/google/callback", handlers.GoogleCallbackHandler)

		// Публичный статус: отвечает false вместо 401.
		authGroup.GET("/status", handlers.AuthStatusHandler)

		// Выход: удаление сессии и очистка cookies.
		authGroup.POST("/logout", handlers.LogoutHandler)
	}
}
