package models

import (
	"time"

	"roost/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // GUEST | HOST | PARTNER | ADMIN

	// Destination for transfers, opaque to us (bank token, mobile wallet id).
	PayoutAccount  string `gorm:"size:128" json:"-"`
	PayoutCurrency string `gorm:"size:3" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Currency is the payout currency, defaulting when the account never set one.
func (u *User) Currency() string {
	if u.PayoutCurrency == "" {
		return domain.DefaultCurrency
	}
	return u.PayoutCurrency
}

func (u *User) IsHost() bool    { return u.Role == domain.RoleHost }
func (u *User) IsGuest() bool   { return u.Role == domain.RoleGuest }
func (u *User) IsPartner() bool { return u.Role == domain.RolePartner }
func (u *User) IsAdmin() bool   { return u.Role == domain.RoleAdmin }
