package repository

import (
	"errors"
	"time"

	"roost/internal/domain"
	"roost/internal/models"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction, so
// transition writes and ledger appends share one unit of work.
func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.db.First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByCheckoutRef(ref string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Where("checkout_ref = ?", ref).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// TransitionStatus performs the status-guarded update that serializes
// concurrent transitions on one booking: the row only moves if it is still in
// the expected status. Zero rows affected means a lost race (or a stale
// read) and surfaces as ErrConcurrentModification to the caller.
func (r *BookingRepository) TransitionStatus(id uint, from, to string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// ListConfirmedEnded returns confirmed bookings whose scheduled end has
// passed, for the completion sweep.
func (r *BookingRepository) ListConfirmedEnded(before time.Time) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("status = ? AND end_time < ?", domain.BookingConfirmed, before).
		Order("end_time ASC").
		Find(&list).Error
	return list, err
}

// ListConfirmedWithoutCommission finds confirmed bookings that have no
// commission ledger row, the reconcilable "captured but no ledger entry"
// window described by the settlement rules.
func (r *BookingRepository) ListConfirmedWithoutCommission() ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.
		Where("status IN ?", []string{domain.BookingConfirmed, domain.BookingCompleted}).
		Where("id NOT IN (?)", r.db.Model(&models.FinancialTransaction{}).
			Select("booking_id").
			Where("type = ? AND booking_id IS NOT NULL", domain.TxTypeCommission)).
		Find(&list).Error
	return list, err
}

// ListCompletedByHost returns the host's completed-but-unpaid bookings for a
// payout run.
func (r *BookingRepository) ListCompletedByHost(hostID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("host_id = ? AND status = ?", hostID, domain.BookingCompleted).
		Find(&list).Error
	return list, err
}

func (r *BookingRepository) ListByGuest(guestID uint, limit, offset int) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *BookingRepository) ListByHost(hostID uint, limit, offset int) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("host_id = ?", hostID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
