package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking is one reservation of one experience slot by one guest.
//
// The money columns are a snapshot of the platform rates in force when the
// booking was created: the guest is charged TotalCents at checkout, so the
// split is fixed then and never recomputed, even if the rate table changes
// while the booking is in flight.
type Booking struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	GuestID      uint  `gorm:"not null;index" json:"guest_id"`
	HostID       uint  `gorm:"not null;index" json:"host_id"`
	ExperienceID uint  `gorm:"not null;index" json:"experience_id"`
	PartnerID    *uint `gorm:"index" json:"partner_id,omitempty"` // referring partner, if booked through a code

	ScheduledDate   time.Time `gorm:"not null" json:"scheduled_date"`
	StartTime       time.Time `gorm:"not null" json:"start_time"`
	EndTime         time.Time `gorm:"not null;index" json:"end_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Attendees       int       `gorm:"not null;default:1" json:"attendees"`

	BasePriceCents         int64  `gorm:"not null" json:"base_price_cents"`
	TotalCents             int64  `gorm:"not null" json:"total_cents"`
	CommissionCents        int64  `gorm:"not null" json:"commission_cents"`
	ServiceFeeCents        int64  `gorm:"not null" json:"service_fee_cents"`
	HostEarningsCents      int64  `gorm:"not null" json:"host_earnings_cents"`
	PartnerCommissionCents int64  `gorm:"not null;default:0" json:"partner_commission_cents"`
	Currency               string `gorm:"size:3;not null;default:'USD'" json:"currency"`

	CheckoutRef          string `gorm:"size:128;uniqueIndex" json:"-"`          // our order id handed to the gateway
	PaymentID            string `gorm:"size:128;index" json:"payment_id"`       // gateway payment id, set on confirm
	PaymentTransactionID string `gorm:"size:128;index" json:"-"`                // gateway authorization/transaction id
	PayoutRef            string `gorm:"size:128" json:"payout_ref,omitempty"`   // transfer reference once paid out

	Status      string     `gorm:"size:30;not null;index" json:"status"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Guest      User       `gorm:"foreignKey:GuestID" json:"-"`
	Host       User       `gorm:"foreignKey:HostID" json:"-"`
	Experience Experience `gorm:"foreignKey:ExperienceID" json:"-"`
}

func (Booking) TableName() string { return "bookings" }
