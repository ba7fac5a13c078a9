// timetracking/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Обязательные переменные окружения. Без любой из них сервер не стартует.
var requiredEnvVars = []string{
	"ENCRYPTION_KEY",
	"DB_URL",
	"JWT_SECRET",
	"GOOGLE_CLIENT_ID",
	"GOOGLE_CLIENT_SECRET",
	"GOOGLE_REDIRECT_URI",
}

var (
	// IsProduction переключает режимы cookie, CORS и gin.
	IsProduction bool

	// FrontendURL - origin фронтенда, туда уходят redirect'ы после OAuth.
	FrontendURL string

	// JwtKey - ключ подписи сессионной cookie.
	JwtKey []byte

	// CalendarMaxResults - максимум событий за один запрос к Google Calendar.
	// Это параметр, а не жесткий лимит (см. CALENDAR_MAX_RESULTS).
	CalendarMaxResults int64
)

const defaultCalendarMaxResults = 100

// Load читает .env (если он есть) и проверяет обязательные переменные.
func Load() error {
	// .env необязателен: в контейнере переменные приходят из окружения.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	for _, name := range requiredEnvVars {
		if os.Getenv(name) == "" {
			return fmt.Errorf("missing required environment variable: %s", name)
		}
	}

	IsProduction = os.Getenv("APP_ENV") == "production"
	JwtKey = []byte(os.Getenv("JWT_SECRET"))

	FrontendURL = os.Getenv("FRONTEND_URL")
	if FrontendURL == "" {
		FrontendURL = "http://localhost:3001"
	}

	CalendarMaxResults = defaultCalendarMaxResults
	if raw := os.Getenv("CALENDAR_MAX_RESULTS"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid CALENDAR_MAX_RESULTS: %q", raw)
		}
		CalendarMaxResults = n
	}

	slog.Info("Configuration loaded",
		"production", IsProduction,
		"frontend_url", FrontendURL,
		"calendar_max_results", CalendarMaxResults)
	return nil
}
