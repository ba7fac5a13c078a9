package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annie-elequin/timetracking/config"
	"github.com/annie-elequin/timetracking/internal/auth"
	"github.com/annie-elequin/timetracking/internal/calendar"
	"github.com/annie-elequin/timetracking/internal/tracking"
	"github.com/annie-elequin/timetracking/models"
)

// parseDateParam accepts RFC3339 or a bare YYYY-MM-DD date.
func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// tagFilterParams collects the requested tag filter from either a repeated
// ?projectTag=... parameter or a comma-separated ?projectTags=... one.
func tagFilterParams(c *gin.Context) []string {
	filter := c.QueryArray("projectTag")
	if raw := c.Query("projectTags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter = append(filter, tag)
			}
		}
	}
	return filter
}

// GetEventsHandler синхронизирует запрошенное окно календаря и возвращает
// нормализованные события. Фильтр по тегу влияет только на ответ:
// в базу пишется все окно целиком.
func GetEventsHandler(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil || sess.Token == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	start := time.Now()
	if raw := c.Query("startDate"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate: " + raw})
			return
		}
		start = t
	}

	var end time.Time // нулевое значение = окно без верхней границы
	if raw := c.Query("endDate"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate: " + raw})
			return
		}
		end = t
	}

	ctx := c.Request.Context()
	ts := config.GoogleOAuth.TokenSource(ctx, sess.Token)
	source, err := calendar.NewSource(ctx, ts, slog.Default())
	if err != nil {
		slog.Error("Failed to create calendar client", "error", err, "user_id", sess.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	syncer := tracking.NewSyncer(config.DB, source, tracking.PolicyWithDescription, config.CalendarMaxResults, slog.Default())
	events, err := syncer.Sync(ctx, sess.UserID, start, end, tagFilterParams(c))
	if err != nil {
		slog.Error("Error fetching events", "error", err, "user_id", sess.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	// TokenSource мог обновить access token - сохраняем его в сессию,
	// чтобы не обновлять заново на каждом запросе.
	if latest, err := ts.Token(); err == nil && latest.AccessToken != sess.Token.AccessToken {
		sess.Token = latest
		if err := auth.NewSessionStore(config.RDB).Put(ctx, c.GetString("session_id"), sess); err != nil {
			slog.Warn("Failed to store refreshed token", "error", err, "user_id", sess.UserID)
		}
	}

	c.JSON(http.StatusOK, events)
}

// ListTagsHandler возвращает все метки проектов пользователя.
func ListTagsHandler(c *gin.Context) {
	userID := c.GetUint("user_id")

	var tags []models.ProjectTag
	if err := config.DB.Where("user_id = ?", userID).Order("tag").Find(&tags).Error; err != nil {
		slog.Error("Error fetching tags", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}
	if tags == nil {
		tags = make([]models.ProjectTag, 0)
	}
	c.JSON(http.StatusOK, tags)
}

// ListStoredEventsHandler листает уже сохраненные события без похода в
// Google - для просмотра истории.
func ListStoredEventsHandler(c *gin.Context) {
	userID := c.GetUint("user_id")

	query := config.DB.Preload("ProjectTags").Where("user_id = ?", userID)
	countQuery := config.DB.Model(&models.Event{}).Where("user_id = ?", userID)

	if raw := c.Query("startDate"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate: " + raw})
			return
		}
		query = query.Where("start_time >= ?", t)
		countQuery = countQuery.Where("start_time >= ?", t)
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate: " + raw})
			return
		}
		query = query.Where("start_time < ?", t)
		countQuery = countQuery.Where("start_time < ?", t)
	}

	var totalRows int64
	countQuery.Count(&totalRows)

	var events []models.Event
	if err := query.Order("start_time DESC").Scopes(Paginate(c)).Find(&events).Error; err != nil {
		slog.Error("Error fetching stored events", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	if events == nil {
		events = make([]models.Event, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, events, totalRows))
}
