package models

import (
	"time"

	"gorm.io/gorm"
)

// PlatformSetting stores admin-configurable key/value settings (the rate table).
type PlatformSetting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Key       string         `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string         `gorm:"size:255;not null" json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PlatformSetting) TableName() string { return "platform_settings" }
