package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveTimer is the transient row behind a running timer. The unique
// index on user_id guarantees at most one per user; handlers surface a
// conflict error instead of a second row.
type ActiveTimer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	StartedAt time.Time `gorm:"not null" json:"started_at"`
}

func (t *ActiveTimer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *ActiveTimer) Elapsed(now time.Time) time.Duration {
	return now.Sub(t.StartedAt)
}

// TimerDuration converts the elapsed run of a timer into whole minutes,
// rounding to the nearest minute and flooring at one so sub-minute
// sessions still produce an entry.
func TimerDuration(elapsed time.Duration) int {
	minutes := int(math.Round(elapsed.Seconds() / 60))
	if minutes < 1 {
		return 1
	}
	return minutes
}
