package models

import (
	"time"

	"gorm.io/gorm"
)

// PartnerCode is a unique referral code belonging to a partner.
// Each partner has at most one code; bookings created with the code
// attribute their partner commission to its owner.
type PartnerCode struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PartnerID uint           `gorm:"uniqueIndex;not null" json:"partner_id"`
	Code      string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Partner User `gorm:"foreignKey:PartnerID" json:"-"`
}

func (PartnerCode) TableName() string { return "partner_codes" }
