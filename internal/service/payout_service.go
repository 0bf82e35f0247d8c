package service

import (
	"context"
	"fmt"

	"roost/internal/domain"
	"roost/internal/models"
	"roost/internal/repository"
	"roost/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PayoutService batches pending commission rows into gateway transfers.
// A payout run is one database transaction: the batch is counted, flipped to
// COMPLETED with a guarded bulk update, the transfer is initiated, and a
// PAYOUT ledger row is appended. If the guarded update clears fewer rows
// than were counted, another run raced this one and the whole batch rolls
// back with nothing disbursed.
type PayoutService struct {
	db       *gorm.DB
	bookings *repository.BookingRepository
	txns     *repository.TransactionRepository
	users    *repository.UserRepository
	settings *repository.SettingRepository
	gateway  payment.Gateway
	notif    *NotificationService
	log      *zap.Logger
}

func NewPayoutService(
	db *gorm.DB,
	bookings *repository.BookingRepository,
	txns *repository.TransactionRepository,
	users *repository.UserRepository,
	settings *repository.SettingRepository,
	gateway payment.Gateway,
	notif *NotificationService,
	log *zap.Logger,
) *PayoutService {
	return &PayoutService{
		db:       db,
		bookings: bookings,
		txns:     txns,
		users:    users,
		settings: settings,
		gateway:  gateway,
		notif:    notif,
		log:      log,
	}
}

// ListPartnerBalances returns every partner with a non-zero pending balance,
// aggregated live from the ledger.
func (s *PayoutService) ListPartnerBalances() ([]repository.PartnerBalance, error) {
	return s.txns.PartnerBalances()
}

// PayoutResult summarizes one completed payout run.
type PayoutResult struct {
	UserID      uint   `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
	Rows        int64  `json:"rows"`
	Reference   string `json:"reference"`
}

// PayoutPartner disburses a partner's accumulated commission. The balance is
// recomputed from the ledger inside the run and must meet the configured
// threshold; below it the run fails with ErrBelowThreshold and nothing moves.
func (s *PayoutService) PayoutPartner(ctx context.Context, partnerID uint) (*PayoutResult, error) {
	partner, err := s.users.GetByID(partnerID)
	if err != nil {
		return nil, err
	}
	if !partner.IsPartner() {
		return nil, fmt.Errorf("user %d: %w", partnerID, domain.ErrNotFound)
	}

	threshold := s.settings.Rates().PartnerPayoutThresholdCents
	payoutRef := "po-" + uuid.New().String()
	var result *PayoutResult

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txns := s.txns.WithTx(tx)
		balance, err := txns.AvailableBalance(partnerID)
		if err != nil {
			return err
		}
		if balance < threshold {
			return fmt.Errorf("balance %d below threshold %d: %w", balance, threshold, domain.ErrBelowThreshold)
		}
		count, err := txns.CountPendingForUser(partnerID)
		if err != nil {
			return err
		}
		rows, err := txns.CompletePendingForUser(partnerID, payoutRef)
		if err != nil {
			return err
		}
		if rows != count {
			return domain.ErrConcurrentModification
		}
		transferID, err := s.gateway.InitiateTransfer(ctx, payment.TransferRequest{
			RecipientID: partner.PayoutAccount,
			AmountCents: balance,
			Currency:    partner.Currency(),
			Description: "Partner commission payout",
			BatchRef:    payoutRef,
		})
		if err != nil {
			return err
		}
		s.log.Debug("transfer initiated", zap.String("transfer_id", transferID))
		if err := txns.Create(&models.FinancialTransaction{
			UserID:      partnerID,
			Type:        domain.TxTypePayout,
			AmountCents: balance,
			Currency:    partner.Currency(),
			Status:      domain.TxStatusCompleted,
			Reference:   payoutRef,
		}); err != nil {
			return err
		}
		result = &PayoutResult{UserID: partnerID, AmountCents: balance, Rows: rows, Reference: payoutRef}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("partner payout disbursed",
		zap.Uint("partner_id", partnerID),
		zap.Int64("amount_cents", result.AmountCents),
		zap.String("reference", payoutRef))
	s.notif.NotifyPayoutSent(partnerID, result.AmountCents, payoutRef)
	return result, nil
}

// PayoutHost disburses a host's released earnings and marks the underlying
// completed bookings PAID_OUT. Each booking moves through the guarded update,
// so a booking cancelled or already paid mid-run aborts the batch.
func (s *PayoutService) PayoutHost(ctx context.Context, hostID uint) (*PayoutResult, error) {
	host, err := s.users.GetByID(hostID)
	if err != nil {
		return nil, err
	}
	if !host.IsHost() {
		return nil, fmt.Errorf("user %d: %w", hostID, domain.ErrNotFound)
	}

	payoutRef := "po-" + uuid.New().String()
	var result *PayoutResult

	err = s.db.Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		txns := s.txns.WithTx(tx)

		balance, err := txns.AvailableBalance(hostID)
		if err != nil {
			return err
		}
		if balance <= 0 {
			return fmt.Errorf("nothing to disburse: %w", domain.ErrBelowThreshold)
		}
		count, err := txns.CountPendingForUser(hostID)
		if err != nil {
			return err
		}
		rows, err := txns.CompletePendingForUser(hostID, payoutRef)
		if err != nil {
			return err
		}
		if rows != count {
			return domain.ErrConcurrentModification
		}
		completed, err := bookings.ListCompletedByHost(hostID)
		if err != nil {
			return err
		}
		for i := range completed {
			if err := bookings.TransitionStatus(completed[i].ID, domain.BookingCompleted, domain.BookingPaidOut, map[string]interface{}{
				"payout_ref": payoutRef,
			}); err != nil {
				return err
			}
		}
		transferID, err := s.gateway.InitiateTransfer(ctx, payment.TransferRequest{
			RecipientID: host.PayoutAccount,
			AmountCents: balance,
			Currency:    host.Currency(),
			Description: "Host earnings payout",
			BatchRef:    payoutRef,
		})
		if err != nil {
			return err
		}
		s.log.Debug("transfer initiated", zap.String("transfer_id", transferID))
		if err := txns.Create(&models.FinancialTransaction{
			UserID:      hostID,
			Type:        domain.TxTypePayout,
			AmountCents: balance,
			Currency:    host.Currency(),
			Status:      domain.TxStatusCompleted,
			Reference:   payoutRef,
		}); err != nil {
			return err
		}
		result = &PayoutResult{UserID: hostID, AmountCents: balance, Rows: rows, Reference: payoutRef}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("host payout disbursed",
		zap.Uint("host_id", hostID),
		zap.Int64("amount_cents", result.AmountCents),
		zap.String("reference", payoutRef))
	s.notif.NotifyPayoutSent(hostID, result.AmountCents, payoutRef)
	return result, nil
}
