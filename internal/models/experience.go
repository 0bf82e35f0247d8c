package models

import (
	"time"

	"gorm.io/gorm"
)

// Experience is a bookable listing offered by a host.
type Experience struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	HostID          uint           `gorm:"not null;index" json:"host_id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	BasePriceCents  int64          `gorm:"not null" json:"base_price_cents"`
	Currency        string         `gorm:"size:3;not null;default:'USD'" json:"currency"`
	DurationMinutes int            `gorm:"not null" json:"duration_minutes"`
	Capacity        int            `gorm:"not null;default:1" json:"capacity"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Host User `gorm:"foreignKey:HostID" json:"-"`
}

func (Experience) TableName() string { return "experiences" }
