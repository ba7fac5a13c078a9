package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/annie-elequin/timetracking/config"
	"github.com/annie-elequin/timetracking/internal/tracking"
	"github.com/annie-elequin/timetracking/models"
)

// reportWindow разбирает окно отчета; по умолчанию - последние 7 дней.
func reportWindow(c *gin.Context) (time.Time, time.Time, bool) {
	end := time.Now()
	start := end.AddDate(0, 0, -7)

	if raw := c.Query("startDate"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate: " + raw})
			return start, end, false
		}
		start = t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate: " + raw})
			return start, end, false
		}
		end = t
	}
	return start, end, true
}

func loadReportEvents(c *gin.Context, start, end time.Time) ([]models.Event, error) {
	userID := c.GetUint("user_id")
	var events []models.Event
	err := config.DB.Preload("ProjectTags").
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, start, end).
		Order("start_time").
		Find(&events).Error
	return events, err
}

// GetReportHandler группирует сохраненные события по меткам за окно.
// Событие с несколькими метками попадает в каждую группу целиком, поэтому
// сумма по группам может превышать суммарное время событий.
func GetReportHandler(c *gin.Context) {
	start, end, ok := reportWindow(c)
	if !ok {
		return
	}

	events, err := loadReportEvents(c, start, end)
	if err != nil {
		slog.Error("Error loading report events", "error", err, "user_id", c.GetUint("user_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	groups := tracking.GroupByTag(events, tagFilterParams(c))

	total := 0
	for _, g := range groups {
		total += g.TotalMinutes
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate":    start,
		"endDate":      end,
		"groups":       groups,
		"totalMinutes": total,
	})
}

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ExportReportHandler отдает тот же отчет книгой XLSX.
func ExportReportHandler(c *gin.Context) {
	start, end, ok := reportWindow(c)
	if !ok {
		return
	}

	events, err := loadReportEvents(c, start, end)
	if err != nil {
		slog.Error("Error loading report events", "error", err, "user_id", c.GetUint("user_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	groups := tracking.GroupByTag(events, tagFilterParams(c))

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Tag", "Events", "Total minutes", "Total time"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, g := range groups {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), g.Tag)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), len(g.Events))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), g.TotalMinutes)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), formatMinutes(g.TotalMinutes))
		row++

		// Под каждой группой - ее события со сдвигом на колонку.
		for _, ev := range g.Events {
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), ev.Summary)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), ev.StartTime.Format("2006-01-02 15:04"))
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), formatMinutes(ev.Duration))
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("Error writing report workbook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	filename := fmt.Sprintf("time-report-%s.xlsx", start.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
