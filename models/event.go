// timetracking/models/event.go

package models

import "time"

// Event - отслеживаемое событие календаря. GoogleEventID служит ключом
// идемпотентности: повторная синхронизация перезаписывает запись целиком,
// а не создает дубликат.
type Event struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	UserID        uint         `json:"user_id" gorm:"index;not null"`
	GoogleEventID string       `json:"googleEventId" gorm:"uniqueIndex;not null"`
	Summary       string       `json:"summary"`
	Description   string       `json:"description"`
	StartTime     time.Time    `json:"start"`
	EndTime       time.Time    `json:"end"`
	Duration      int          `json:"duration"` // в минутах, всегда пересчитывается из start/end
	ProjectTags   []ProjectTag `json:"projectTags" gorm:"many2many:event_project_tags;"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
