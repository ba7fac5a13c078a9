// timetracking/config/redis.go
package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

// ConnectRedis подключается к Redis. Здесь лежат сессии (session id ->
// учетные данные Google), поэтому без Redis сервер не поднимаем.
func ConnectRedis() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		slog.Error("Критическая ошибка: переменная окружения REDIS_ADDR не установлена.")
		os.Exit(1)
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Проверяем соединение
	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Не удалось подключиться к Redis", "error", err)
		os.Exit(1)
	}

	slog.Info("Успешное подключение к Redis!")
}
