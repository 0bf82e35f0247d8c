// Package ledger holds the pure money-split arithmetic. No I/O, no clock,
// no database: everything here is deterministic so the same inputs always
// produce the same split wherever they are computed.
package ledger

import (
	"math"

	"roost/internal/domain"
)

// Split is the full monetary breakdown of one booking.
//
//	TotalCents        = BaseCents + ServiceFeeCents   (what the guest pays)
//	HostEarningsCents = BaseCents - CommissionCents   (what the host keeps)
type Split struct {
	BaseCents         int64
	TotalCents        int64
	CommissionCents   int64
	ServiceFeeCents   int64
	HostEarningsCents int64
}

// ComputeSplit derives the platform commission, guest service fee and host
// earnings from a base price and the rate table in force.
//
// Rounding is half-up (math.Round, ties away from zero) and is applied once
// per derived figure. Host earnings are computed by subtraction, never by an
// independent rounding, so commission + earnings always reconstruct the base
// price exactly.
func ComputeSplit(baseCents int64, commissionRate, serviceFeeRate float64) (Split, error) {
	if baseCents < 0 {
		return Split{}, domain.ErrInvalidAmount
	}
	if !validRate(commissionRate) || !validRate(serviceFeeRate) {
		return Split{}, domain.ErrInvalidAmount
	}
	commission := roundCents(float64(baseCents) * commissionRate)
	serviceFee := roundCents(float64(baseCents) * serviceFeeRate)
	return Split{
		BaseCents:         baseCents,
		TotalCents:        baseCents + serviceFee,
		CommissionCents:   commission,
		ServiceFeeCents:   serviceFee,
		HostEarningsCents: baseCents - commission,
	}, nil
}

// PartnerCommission is the referring partner's flat cut of the booking's base
// price, independent of the platform commission.
func PartnerCommission(baseCents int64, partnerRate float64) (int64, error) {
	if baseCents < 0 || !validRate(partnerRate) {
		return 0, domain.ErrInvalidAmount
	}
	return roundCents(float64(baseCents) * partnerRate), nil
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

func validRate(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) && r >= 0 && r <= 1
}
