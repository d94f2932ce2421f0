package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ProjectTask is a board card on a project. SpentHours is maintained by
// hand in the task form and is not reconciled with timer data.
type ProjectTask struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project        *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Title          string         `gorm:"not null;size:300" json:"title"`
	Description    string         `gorm:"size:2000" json:"description"`
	Status         TaskStatus     `gorm:"not null;size:20;default:todo" json:"status"`
	Priority       TaskPriority   `gorm:"not null;size:20;default:medium" json:"priority"`
	AssignedTo     *uuid.UUID     `gorm:"type:uuid;index" json:"assigned_to"`
	Assignee       *Profile       `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	EstimatedHours float64        `json:"estimated_hours"`
	SpentHours     float64        `json:"spent_hours"`
	DueDate        *time.Time     `gorm:"type:date" json:"due_date"`
	CreatedBy      uuid.UUID      `gorm:"type:uuid" json:"created_by"`
}

func (t *ProjectTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
