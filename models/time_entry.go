package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimeEntry struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *Profile       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProjectID       *uuid.UUID     `gorm:"type:uuid;index" json:"project_id"`
	Project         *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	DurationMinutes int            `gorm:"not null" json:"duration_minutes"`
	Date            time.Time      `gorm:"not null;type:date;index" json:"date"`
	Notes           string         `gorm:"size:1000" json:"notes"`
	IsBillable      bool           `gorm:"default:false" json:"is_billable"`
	IsTimer         bool           `gorm:"default:false" json:"is_timer"`
	StartTime       *time.Time     `json:"start_time"`
	EndTime         *time.Time     `json:"end_time"`
}

func (e *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
