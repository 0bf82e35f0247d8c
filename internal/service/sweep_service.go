package service

import (
	"context"
	"errors"
	"time"

	"roost/internal/domain"
	"roost/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SweepService is the periodic job that promotes confirmed bookings whose
// scheduled end has passed to COMPLETED. The sweep is idempotent: each
// promotion goes through the same guarded transition as a manual completion,
// so a booking another actor already moved is skipped, never corrupted.
type SweepService struct {
	db       *gorm.DB
	bookings *repository.BookingRepository
	txns     *repository.TransactionRepository
	booking  *BookingService
	log      *zap.Logger
}

func NewSweepService(db *gorm.DB, bookings *repository.BookingRepository, txns *repository.TransactionRepository, booking *BookingService, log *zap.Logger) *SweepService {
	return &SweepService{db: db, bookings: bookings, txns: txns, booking: booking, log: log}
}

// SweepResult is one run's tally.
type SweepResult struct {
	Scanned   int `json:"scanned"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Repaired  int `json:"repaired"`
}

// Run completes every confirmed booking that ended before now. One booking
// failing never aborts the run; lost races and stale reads are logged and
// counted as skips, and the next run picks up whatever remains.
func (s *SweepService) Run(ctx context.Context, now time.Time) (*SweepResult, error) {
	ended, err := s.bookings.ListConfirmedEnded(now)
	if err != nil {
		return nil, err
	}
	res := &SweepResult{Scanned: len(ended)}
	for i := range ended {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := s.booking.Complete(ctx, ended[i].ID); err != nil {
			if errors.Is(err, domain.ErrConcurrentModification) || errors.Is(err, domain.ErrIllegalTransition) {
				res.Skipped++
				continue
			}
			s.log.Error("sweep completion failed",
				zap.Uint("booking_id", ended[i].ID), zap.Error(err))
			res.Skipped++
			continue
		}
		res.Completed++
	}

	repaired, err := s.repairMissingLedgerRows(ctx)
	if err != nil {
		s.log.Error("ledger repair pass failed", zap.Error(err))
	}
	res.Repaired = repaired

	s.log.Info("completion sweep finished",
		zap.Int("scanned", res.Scanned),
		zap.Int("completed", res.Completed),
		zap.Int("skipped", res.Skipped),
		zap.Int("repaired", res.Repaired))
	return res, nil
}

// repairMissingLedgerRows closes the reconcilable window where a capture
// committed but the process died before its commission rows did. The rows
// are rebuilt from the booking's own money snapshot, so the repaired figures
// match what the original approval would have written.
func (s *SweepService) repairMissingLedgerRows(ctx context.Context) (int, error) {
	orphans, err := s.bookings.ListConfirmedWithoutCommission()
	if err != nil {
		return 0, err
	}
	repaired := 0
	for i := range orphans {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}
		b := &orphans[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			exists, err := s.txns.WithTx(tx).HasCommissionForBooking(b.ID)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			if err := s.booking.writeCommissionRows(tx, b); err != nil {
				return err
			}
			// A booking that already completed needs its host row released
			// the way the normal completion path would have.
			if b.Status == domain.BookingCompleted {
				return s.txns.WithTx(tx).ReleaseForBooking(b.ID, b.HostID)
			}
			return nil
		})
		if err != nil {
			s.log.Error("ledger repair failed", zap.Uint("booking_id", b.ID), zap.Error(err))
			continue
		}
		s.log.Warn("rebuilt missing commission rows", zap.Uint("booking_id", b.ID))
		repaired++
	}
	return repaired, nil
}
