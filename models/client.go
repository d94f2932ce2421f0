package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null;size:200" json:"name"`
	Company   string         `gorm:"size:200" json:"company"`
	Email     string         `gorm:"size:200" json:"email"`
	Phone     string         `gorm:"size:50" json:"phone"`
	Projects  []Project      `gorm:"foreignKey:ClientID" json:"projects,omitempty"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BillingName is what invoices and exports show for this client.
func (c *Client) BillingName() string {
	if c.Company != "" {
		return c.Company
	}
	return c.Name
}
