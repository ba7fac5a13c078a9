package middleware

import (
	"net/http"

	"github.com/annie-elequin/timetracking/config"
	"github.com/annie-elequin/timetracking/internal/auth"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware проверяет сессионную cookie и кладет сессию в контекст.
// Запросы без валидной сессии получают 401 до любого обращения к БД или
// внешнему API.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(auth.SessionCookie)
		if err != nil || tokenStr == "" {
			handleAuthError(c, "Not authenticated")
			return
		}

		sessionID, err := auth.ParseSessionToken(tokenStr, config.JwtKey)
		if err != nil {
			c.SetCookie(auth.SessionCookie, "", -1, "/", "", config.IsProduction, true)
			handleAuthError(c, "Invalid or expired token")
			return
		}

		sessions := auth.NewSessionStore(config.RDB)
		sess, err := sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			c.SetCookie(auth.SessionCookie, "", -1, "/", "", config.IsProduction, true)
			handleAuthError(c, "Session expired")
			return
		}

		c.Set("session_id", sessionID)
		c.Set("session", sess)
		c.Set("user_id", sess.UserID)
		c.Next()
	}
}

func handleAuthError(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}
