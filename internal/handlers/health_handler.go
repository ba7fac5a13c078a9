package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annie-elequin/timetracking/config"
)

// HealthHandler - liveness/readiness: проверяет соединения с Postgres и Redis.
func HealthHandler(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "up"
	redisStatus := "up"

	if config.DB == nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	} else if sqlDB, err := config.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	if config.RDB == nil {
		redisStatus = "down"
		status = http.StatusServiceUnavailable
	} else if err := config.RDB.Ping(c.Request.Context()).Err(); err != nil {
		redisStatus = "down"
		status = http.StatusServiceUnavailable
	}

	body := gin.H{"status": "ok", "database": dbStatus, "redis": redisStatus}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
