package models

import (
	"time"
)

// FinancialTransaction is an immutable ledger entry. Rows are only ever
// created as a side effect of a booking transition or a payout run.
// The only permitted mutations are the PENDING -> COMPLETED flip when a
// payout batch clears a row, PENDING -> REVERSED on refund, and the
// Available flip when the underlying booking completes. Rows are never
// deleted; corrections are new offsetting rows.
type FinancialTransaction struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"` // host or partner the entry belongs to
	BookingID   *uint  `gorm:"index" json:"booking_id,omitempty"`
	Type        string `gorm:"size:20;not null;index" json:"type"`   // COMMISSION, PAYOUT, REFUND
	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Currency    string `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status      string `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, REVERSED
	Available   bool   `gorm:"not null;default:false;index" json:"available"` // eligible for a payout run
	Reference   string `gorm:"size:128" json:"reference"` // checkout ref, payout transfer ref
	CreatedAt   time.Time `json:"created_at"`

	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Booking *Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (FinancialTransaction) TableName() string { return "financial_transactions" }
