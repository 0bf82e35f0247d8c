package service

import (
	"context"
	"fmt"
	"time"

	"roost/config"
	"roost/internal/domain"
	"roost/internal/ledger"
	"roost/internal/models"
	"roost/internal/repository"
	"roost/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the authenticated party attempting a transition.
type Actor struct {
	ID   uint
	Role string
}

// BookingService owns the booking lifecycle. Every status change goes
// through the transition table in internal/domain followed by a
// status-guarded update, and every money-affecting transition runs its
// gateway call and ledger writes inside one database transaction: either
// the whole side effect commits or none of it does.
type BookingService struct {
	db          *gorm.DB
	bookings    *repository.BookingRepository
	txns        *repository.TransactionRepository
	experiences *repository.ExperienceRepository
	partners    *repository.PartnerRepository
	users       *repository.UserRepository
	settings    *repository.SettingRepository
	gateway     payment.Gateway
	notif       *NotificationService
	cfg         *config.Config
	log         *zap.Logger
}

func NewBookingService(
	db *gorm.DB,
	bookings *repository.BookingRepository,
	txns *repository.TransactionRepository,
	experiences *repository.ExperienceRepository,
	partners *repository.PartnerRepository,
	users *repository.UserRepository,
	settings *repository.SettingRepository,
	gateway payment.Gateway,
	notif *NotificationService,
	cfg *config.Config,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		db:          db,
		bookings:    bookings,
		txns:        txns,
		experiences: experiences,
		partners:    partners,
		users:       users,
		settings:    settings,
		gateway:     gateway,
		notif:       notif,
		cfg:         cfg,
		log:         log,
	}
}

type CreateBookingInput struct {
	ExperienceID uint
	StartTime    time.Time
	Attendees    int
	PartnerCode  string
}

type CreateBookingResult struct {
	Booking     *models.Booking
	CheckoutURL string
	Token       string
}

// Create reserves a slot and initializes the hosted checkout. The full
// monetary split is snapshotted here, from the rate table in force right
// now: the guest is about to be charged TotalCents, so the figures are
// fixed before the gateway sees them and are never recomputed afterward.
func (s *BookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (*CreateBookingResult, error) {
	if actor.Role != domain.RoleGuest {
		return nil, domain.ErrUnauthorized
	}
	exp, err := s.experiences.GetByID(in.ExperienceID)
	if err != nil {
		return nil, err
	}
	if !exp.IsActive {
		return nil, domain.ErrNotFound
	}
	if in.Attendees < 1 || in.Attendees > exp.Capacity {
		return nil, fmt.Errorf("%w: attendees must be between 1 and %d", domain.ErrInvalidAmount, exp.Capacity)
	}

	var partnerID *uint
	var partnerCut int64
	rates := s.settings.Rates()
	base := exp.BasePriceCents * int64(in.Attendees)
	split, err := ledger.ComputeSplit(base, rates.CommissionRate, rates.ServiceFeeRate)
	if err != nil {
		return nil, err
	}
	if in.PartnerCode != "" {
		pc, err := s.partners.GetByCode(in.PartnerCode)
		if err != nil {
			return nil, fmt.Errorf("partner code: %w", err)
		}
		partnerID = &pc.PartnerID
		partnerCut, err = ledger.PartnerCommission(base, rates.PartnerCommissionRate)
		if err != nil {
			return nil, err
		}
	}

	guest, err := s.users.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}

	checkoutRef := "bk-" + uuid.New().String()
	session, err := s.gateway.InitializeCheckout(ctx, payment.CheckoutRequest{
		OrderID:     checkoutRef,
		AmountCents: split.TotalCents,
		Currency:    exp.Currency,
		Description: exp.Title,
		BuyerEmail:  guest.Email,
		BuyerName:   guest.Username,
		CallbackURL: s.cfg.CallbackBase + "/api/v1/payments/callback",
	})
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		GuestID:                actor.ID,
		HostID:                 exp.HostID,
		ExperienceID:           exp.ID,
		PartnerID:              partnerID,
		ScheduledDate:          in.StartTime.Truncate(24 * time.Hour),
		StartTime:              in.StartTime,
		EndTime:                in.StartTime.Add(time.Duration(exp.DurationMinutes) * time.Minute),
		DurationMinutes:        exp.DurationMinutes,
		Attendees:              in.Attendees,
		BasePriceCents:         split.BaseCents,
		TotalCents:             split.TotalCents,
		CommissionCents:        split.CommissionCents,
		ServiceFeeCents:        split.ServiceFeeCents,
		HostEarningsCents:      split.HostEarningsCents,
		PartnerCommissionCents: partnerCut,
		Currency:               exp.Currency,
		CheckoutRef:            checkoutRef,
		Status:                 domain.BookingPendingPayment,
	}
	if err := s.bookings.Create(b); err != nil {
		return nil, err
	}
	s.log.Info("booking created",
		zap.Uint("booking_id", b.ID),
		zap.Uint("guest_id", actor.ID),
		zap.Int64("total_cents", b.TotalCents))
	return &CreateBookingResult{Booking: b, CheckoutURL: session.CheckoutURL, Token: session.Token}, nil
}

// ConfirmPayment resolves a checkout callback token. On success the booking
// moves to PENDING_HOST_APPROVAL with the gateway ids stored; funds are only
// authorized at this point, so no ledger rows are written. A retried
// callback for an already-advanced booking is acknowledged without effect.
func (s *BookingService) ConfirmPayment(ctx context.Context, token string) (*models.Booking, error) {
	res, err := s.gateway.ConfirmCallback(ctx, token)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByCheckoutRef(res.OrderID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPendingPayment {
		// Gateway retry after we already processed this callback.
		return b, nil
	}

	if !res.Success {
		if err := s.bookings.TransitionStatus(b.ID, domain.BookingPendingPayment, domain.BookingPaymentFailed, nil); err != nil {
			return nil, err
		}
		s.log.Info("payment failed",
			zap.Uint("booking_id", b.ID),
			zap.String("reason", res.FailureReason))
		return s.bookings.GetByID(b.ID)
	}

	err = s.bookings.TransitionStatus(b.ID, domain.BookingPendingPayment, domain.BookingPendingHostApproval, map[string]interface{}{
		"payment_id":             res.PaymentID,
		"payment_transaction_id": res.TransactionID,
	})
	if err != nil {
		return nil, err
	}
	s.notif.NotifyBookingPaid(b.HostID, b.ID)
	return s.bookings.GetByID(b.ID)
}

// Approve is the host accepting a paid booking. In one committed unit: the
// status moves to CONFIRMED, the held authorization is captured, and the
// commission rows (host earnings, plus the partner's cut when the booking
// was referred) are appended as PENDING. A gateway failure rolls the whole
// transition back.
func (s *BookingService) Approve(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, b.HostID) {
		return nil, domain.ErrUnauthorized
	}
	if !domain.CanTransition(b.Status, domain.BookingConfirmed) {
		return nil, domain.ErrIllegalTransition
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookings.WithTx(tx).TransitionStatus(b.ID, domain.BookingPendingHostApproval, domain.BookingConfirmed, map[string]interface{}{
			"confirmed_at": &now,
		}); err != nil {
			return err
		}
		// The guarded update makes a duplicate impossible under normal flow;
		// this check covers repaired or hand-edited rows.
		exists, err := s.txns.WithTx(tx).HasCommissionForBooking(b.ID)
		if err != nil {
			return err
		}
		if err := s.gateway.CaptureAuthorization(ctx, b.PaymentTransactionID); err != nil {
			return err
		}
		if exists {
			return nil
		}
		return s.writeCommissionRows(tx, b)
	})
	if err != nil {
		return nil, err
	}
	s.notif.NotifyBookingConfirmed(b.GuestID, b.ID)
	return s.bookings.GetByID(b.ID)
}

// writeCommissionRows appends the settlement entries for a captured booking,
// from the booking's own money snapshot.
func (s *BookingService) writeCommissionRows(tx *gorm.DB, b *models.Booking) error {
	txns := s.txns.WithTx(tx)
	host := &models.FinancialTransaction{
		UserID:      b.HostID,
		BookingID:   &b.ID,
		Type:        domain.TxTypeCommission,
		AmountCents: b.HostEarningsCents,
		Currency:    b.Currency,
		Status:      domain.TxStatusPending,
		Available:   false, // released when the booking completes
		Reference:   b.CheckoutRef,
	}
	if err := txns.Create(host); err != nil {
		return err
	}
	if b.PartnerID != nil && b.PartnerCommissionCents > 0 {
		partner := &models.FinancialTransaction{
			UserID:      *b.PartnerID,
			BookingID:   &b.ID,
			Type:        domain.TxTypeCommission,
			AmountCents: b.PartnerCommissionCents,
			Currency:    b.Currency,
			Status:      domain.TxStatusPending,
			Available:   true,
			Reference:   b.CheckoutRef,
		}
		if err := txns.Create(partner); err != nil {
			return err
		}
	}
	return nil
}

// Reject releases a paid-but-unapproved booking: the authorization is voided
// (it was never captured) and no ledger rows exist or are written.
func (s *BookingService) Reject(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, b.HostID) {
		return nil, domain.ErrUnauthorized
	}
	if b.Status != domain.BookingPendingHostApproval {
		return nil, domain.ErrIllegalTransition
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookings.WithTx(tx).TransitionStatus(b.ID, domain.BookingPendingHostApproval, domain.BookingRejected, map[string]interface{}{
			"cancelled_at": &now,
		}); err != nil {
			return err
		}
		return s.gateway.VoidAuthorization(ctx, b.PaymentTransactionID)
	})
	if err != nil {
		return nil, err
	}
	s.notif.NotifyBookingRejected(b.GuestID, b.ID)
	return s.bookings.GetByID(b.ID)
}

// Refund cancels a booking and reverses its money. The gateway operation
// depends on where the booking stands: before approval the funds are only
// authorized and the authorization is voided; once captured (CONFIRMED or
// COMPLETED) the charge is refunded and a REFUND ledger row records the
// returned total. Pending commission rows for the booking flip to REVERSED;
// commissions already disbursed by a payout run stand.
func (s *BookingService) Refund(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !s.canRefund(actor, b) {
		return nil, domain.ErrUnauthorized
	}
	target := domain.BookingCancelledByHost
	if actor.Role == domain.RoleGuest {
		target = domain.BookingCancelledByUser
	}
	if !domain.CanTransition(b.Status, target) {
		return nil, domain.ErrIllegalTransition
	}
	captured := b.Status != domain.BookingPendingHostApproval

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookings.WithTx(tx).TransitionStatus(b.ID, b.Status, target, map[string]interface{}{
			"cancelled_at": &now,
		}); err != nil {
			return err
		}
		if captured {
			if err := s.gateway.RefundPayment(ctx, b.PaymentID, b.TotalCents); err != nil {
				return err
			}
		} else {
			if err := s.gateway.VoidAuthorization(ctx, b.PaymentTransactionID); err != nil {
				return err
			}
		}
		reversed, err := s.txns.WithTx(tx).ReverseCommissionsForBooking(b.ID)
		if err != nil {
			return err
		}
		if reversed > 0 {
			s.log.Info("commissions reversed on refund",
				zap.Uint("booking_id", b.ID), zap.Int64("rows", reversed))
		}
		if captured {
			return s.txns.WithTx(tx).Create(&models.FinancialTransaction{
				UserID:      b.GuestID,
				BookingID:   &b.ID,
				Type:        domain.TxTypeRefund,
				AmountCents: b.TotalCents,
				Currency:    b.Currency,
				Status:      domain.TxStatusCompleted,
				Reference:   b.PaymentID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notif.NotifyBookingCancelled(b.GuestID, b.ID)
	s.notif.NotifyBookingCancelled(b.HostID, b.ID)
	return s.bookings.GetByID(b.ID)
}

// Complete promotes an elapsed confirmed booking and releases the host's
// earnings for payout. Driven by the completion sweep or an admin.
func (s *BookingService) Complete(ctx context.Context, bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(b.Status, domain.BookingCompleted) {
		return nil, domain.ErrIllegalTransition
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookings.WithTx(tx).TransitionStatus(b.ID, domain.BookingConfirmed, domain.BookingCompleted, map[string]interface{}{
			"completed_at": &now,
		}); err != nil {
			return err
		}
		return s.txns.WithTx(tx).ReleaseForBooking(b.ID, b.HostID)
	})
	if err != nil {
		return nil, err
	}
	s.notif.NotifyReviewRequested(b.GuestID, b.ID)
	return s.bookings.GetByID(b.ID)
}

// canManage allows the owning host or an admin.
func (s *BookingService) canManage(actor Actor, hostID uint) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.Role == domain.RoleHost && actor.ID == hostID
}

// canRefund allows the booking's guest, its host, or an admin.
func (s *BookingService) canRefund(actor Actor, b *models.Booking) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleGuest:
		return actor.ID == b.GuestID
	case domain.RoleHost:
		return actor.ID == b.HostID
	}
	return false
}
