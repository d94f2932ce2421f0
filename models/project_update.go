package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectUpdate is an append-only activity note. There are no edit or
// delete operations for updates.
type ProjectUpdate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User      *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string    `gorm:"not null;size:4000" json:"content"`
}

func (u *ProjectUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
