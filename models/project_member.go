package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectMember grants a profile visibility and assignment eligibility
// on a project. A profile joins a project at most once.
type ProjectMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_user" json:"user_id"`
	User      *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
