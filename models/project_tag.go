package models

import "time"

// ProjectTag - метка проекта, извлеченная из текста события (#tag).
// Уникальна в паре (user_id, tag); описание перезаписывается при каждой
// синхронизации последним увиденным значением.
type ProjectTag struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex:idx_user_tag;not null"`
	Tag         string    `json:"tag" gorm:"uniqueIndex:idx_user_tag;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
