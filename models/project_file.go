package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectFile is a metadata row pointing at an object in external blob
// storage. The blob itself is uploaded and served elsewhere.
type ProjectFile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	Uploader   *Profile  `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	FileName   string    `gorm:"not null;size:500" json:"file_name"`
	FileType   string    `gorm:"size:200" json:"file_type"`
	FileURL    string    `gorm:"not null;size:1000" json:"file_url"`
	FileSize   int64     `json:"file_size"`
}

func (f *ProjectFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
