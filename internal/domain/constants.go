package domain

const (
	RoleGuest   = "GUEST"
	RoleHost    = "HOST"
	RolePartner = "PARTNER"
	RoleAdmin   = "ADMIN"
)

// Booking lifecycle statuses. PAID_OUT and the four branch statuses are terminal.
const (
	BookingPendingPayment      = "PENDING_PAYMENT"
	BookingPendingHostApproval = "PENDING_HOST_APPROVAL"
	BookingConfirmed           = "CONFIRMED"
	BookingCompleted           = "COMPLETED"
	BookingPaidOut             = "PAID_OUT"
	BookingPaymentFailed       = "PAYMENT_FAILED"
	BookingRejected            = "REJECTED"
	BookingCancelledByHost     = "CANCELLED_BY_HOST"
	BookingCancelledByUser     = "CANCELLED_BY_USER"
)

const (
	TxTypeCommission = "COMMISSION"
	TxTypePayout     = "PAYOUT"
	TxTypeRefund     = "REFUND"
)

const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusReversed  = "REVERSED"
)

// Platform setting keys. Rates are stored as decimal fractions ("0.15"),
// the payout threshold in minor currency units.
const (
	SettingCommissionRate         = "commission_rate"
	SettingServiceFeeRate         = "service_fee_rate"
	SettingPartnerCommissionRate  = "partner_commission_rate"
	SettingPartnerPayoutThreshold = "partner_payout_threshold_cents"
)

var SettingDefaults = map[string]string{
	SettingCommissionRate:         "0.15",
	SettingServiceFeeRate:         "0.05",
	SettingPartnerCommissionRate:  "0.10",
	SettingPartnerPayoutThreshold: "15000",
}

const DefaultCurrency = "USD"
