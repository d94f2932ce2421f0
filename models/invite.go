package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invite is the credential half of the two-step member invitation: the
// invite row carries the code sent by email, the profile row is
// upserted alongside it and activated when the code is redeemed.
type Invite struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
	Code       string          `gorm:"uniqueIndex;not null;size:64" json:"code"`
	Email      string          `gorm:"not null;size:200" json:"email"`
	FullName   string          `gorm:"not null;size:200" json:"full_name"`
	Role       Role            `gorm:"not null;size:20" json:"role"`
	HourlyRate decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"hourly_rate"`
	Used       bool            `gorm:"default:false" json:"used"`
	CreatedBy  uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	Creator    *Profile        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	ExpiresAt  time.Time       `gorm:"not null" json:"expires_at"`
}

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func GenerateInviteCode() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (i *Invite) IsValid() bool {
	return !i.Used && time.Now().Before(i.ExpiresAt)
}
