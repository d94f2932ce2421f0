package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

type Profile struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
	Email              string          `gorm:"uniqueIndex;not null;size:200" json:"email"`
	FullName           string          `gorm:"not null;size:200" json:"full_name"`
	PasswordHash       string          `gorm:"not null" json:"-"`
	Role               Role            `gorm:"not null;size:20" json:"role"`
	HourlyRate         decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"hourly_rate"`
	AvatarURL          string          `gorm:"size:500" json:"avatar_url"`
	MustChangePassword bool            `gorm:"default:true" json:"must_change_password"`
	// CalendarToken is the OAuth access token used for calendar sync.
	// Never serialized; sync fails closed when it is empty.
	CalendarToken string      `gorm:"size:2048" json:"-"`
	TimeEntries   []TimeEntry `gorm:"foreignKey:UserID" json:"time_entries,omitempty"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p *Profile) IsManager() bool {
	return p.Role == RoleManager
}

func (p *Profile) CanManageTeam() bool {
	return p.IsAdmin()
}

func (p *Profile) CanInviteMembers() bool {
	return p.IsAdmin() || p.IsManager()
}

func (p *Profile) CanManageProjects() bool {
	return p.IsAdmin() || p.IsManager()
}

func (p *Profile) CanManageEntryFor(userID uuid.UUID) bool {
	if p.IsAdmin() {
		return true
	}
	return p.ID == userID
}
