package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle tag of a project. Transitions are not
// restricted (moving a completed project back to blocked is how
// archive/reactivate works), but values outside this set are rejected.
type ProjectStatus string

const (
	ProjectBacklog    ProjectStatus = "backlog"
	ProjectActive     ProjectStatus = "active"
	ProjectProduction ProjectStatus = "production"
	ProjectSprint     ProjectStatus = "sprint"
	ProjectBlocked    ProjectStatus = "blocked"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectArchived   ProjectStatus = "archived"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectBacklog, ProjectActive, ProjectProduction, ProjectSprint,
		ProjectBlocked, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// InProgress reports whether the project counts as in progress on the
// dashboard.
func (s ProjectStatus) InProgress() bool {
	return s == ProjectActive || s == ProjectProduction
}

// KanbanStatus is the board column a project card sits in. It is
// independent of the lifecycle status.
type KanbanStatus string

const (
	KanbanUpcoming      KanbanStatus = "upcoming"
	KanbanPreproduction KanbanStatus = "preproduction"
	KanbanProduction    KanbanStatus = "production"
	KanbanSprint        KanbanStatus = "sprint"
	KanbanBlocked       KanbanStatus = "blocked"
	KanbanDelivered     KanbanStatus = "delivered"
)

func (s KanbanStatus) Valid() bool {
	switch s {
	case KanbanUpcoming, KanbanPreproduction, KanbanProduction,
		KanbanSprint, KanbanBlocked, KanbanDelivered:
		return true
	}
	return false
}

type Project struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null;size:200" json:"name"`
	Description string         `gorm:"size:2000" json:"description"`
	ClientID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_id"`
	Client      *Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Color       string         `gorm:"size:20" json:"color"`
	Status      ProjectStatus  `gorm:"not null;size:20;default:active" json:"status"`
	Kanban      KanbanStatus   `gorm:"column:kanban_status;not null;size:20;default:upcoming" json:"kanban_status"`
	BudgetHours float64        `json:"budget_hours"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	Location    string         `gorm:"size:200" json:"location"`
	// CalendarEventID keys the single synced calendar event so repeat
	// syncs update it instead of creating duplicates.
	CalendarEventID string `gorm:"size:200" json:"calendar_event_id,omitempty"`
	// HoursLogged is derived from time entries on every read, never stored.
	HoursLogged float64 `gorm:"-" json:"hours_logged"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
