package repository

import (
	"roost/internal/domain"
	"roost/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository is the settlement recorder. Ledger rows are appended
// inside the same transaction as the booking-status update that caused them;
// nothing here edits an existing row's amount or type.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

func (r *TransactionRepository) Create(t *models.FinancialTransaction) error {
	return r.db.Create(t).Error
}

// PendingBalance sums a user's pending ledger rows. Computed live on every
// call; payout eligibility must never come from a cached figure.
func (r *TransactionRepository) PendingBalance(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.FinancialTransaction{}).
		Where("user_id = ? AND type = ? AND status = ?", userID, domain.TxTypeCommission, domain.TxStatusPending).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	return total, err
}

// AvailableBalance is like PendingBalance but restricted to rows already
// released for payout.
func (r *TransactionRepository) AvailableBalance(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.FinancialTransaction{}).
		Where("user_id = ? AND type = ? AND status = ? AND available = ?",
			userID, domain.TxTypeCommission, domain.TxStatusPending, true).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	return total, err
}

func (r *TransactionRepository) ListByUser(userID uint, limit, offset int) ([]models.FinancialTransaction, error) {
	var list []models.FinancialTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *TransactionRepository) ListByBooking(bookingID uint) ([]models.FinancialTransaction, error) {
	var list []models.FinancialTransaction
	err := r.db.Where("booking_id = ?", bookingID).Order("id ASC").Find(&list).Error
	return list, err
}

// HasCommissionForBooking reports whether settlement rows were already
// written for this booking, so a retried approval can never double-credit.
func (r *TransactionRepository) HasCommissionForBooking(bookingID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.FinancialTransaction{}).
		Where("booking_id = ? AND type = ?", bookingID, domain.TxTypeCommission).
		Count(&count).Error
	return count > 0, err
}

// ReverseCommissionsForBooking flips this booking's still-pending commission
// rows to REVERSED. The ledger is append-only, so a refund voids the credit
// by status, never by deleting the row. Already-completed rows (paid out)
// are left alone. Returns the number of rows reversed.
func (r *TransactionRepository) ReverseCommissionsForBooking(bookingID uint) (int64, error) {
	res := r.db.Model(&models.FinancialTransaction{}).
		Where("booking_id = ? AND type = ? AND status = ?", bookingID, domain.TxTypeCommission, domain.TxStatusPending).
		Update("status", domain.TxStatusReversed)
	return res.RowsAffected, res.Error
}

// ReleaseForBooking marks the host's commission row for this booking as
// available for payout (the booking completed).
func (r *TransactionRepository) ReleaseForBooking(bookingID, hostID uint) error {
	return r.db.Model(&models.FinancialTransaction{}).
		Where("booking_id = ? AND user_id = ? AND type = ? AND status = ?",
			bookingID, hostID, domain.TxTypeCommission, domain.TxStatusPending).
		Update("available", true).Error
}

// CompletePendingForUser is the payout batch's guarded bulk update: every
// pending available commission row for the user flips to COMPLETED with the
// payout reference attached. The caller compares RowsAffected against the
// count it read in the same transaction; a mismatch means another payout run
// raced this one and the whole batch rolls back.
func (r *TransactionRepository) CompletePendingForUser(userID uint, payoutRef string) (int64, error) {
	res := r.db.Model(&models.FinancialTransaction{}).
		Where("user_id = ? AND type = ? AND status = ? AND available = ?",
			userID, domain.TxTypeCommission, domain.TxStatusPending, true).
		Updates(map[string]interface{}{"status": domain.TxStatusCompleted, "reference": payoutRef})
	return res.RowsAffected, res.Error
}

// CountPendingForUser returns the batch size a payout run is about to clear.
func (r *TransactionRepository) CountPendingForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.FinancialTransaction{}).
		Where("user_id = ? AND type = ? AND status = ? AND available = ?",
			userID, domain.TxTypeCommission, domain.TxStatusPending, true).
		Count(&count).Error
	return count, err
}

// PartnerBalance is one aggregation row for the payout listing.
type PartnerBalance struct {
	PartnerID        uint   `json:"partner_id"`
	Username         string `json:"username"`
	TransactionCount int64  `json:"transaction_count"`
	TotalCents       int64  `json:"total_cents"`
}

// PartnerBalances aggregates pending commission per partner, one row per
// partner with a non-zero balance.
func (r *TransactionRepository) PartnerBalances() ([]PartnerBalance, error) {
	var rows []PartnerBalance
	err := r.db.Model(&models.FinancialTransaction{}).
		Select("financial_transactions.user_id AS partner_id, users.username AS username, COUNT(*) AS transaction_count, SUM(financial_transactions.amount_cents) AS total_cents").
		Joins("JOIN users ON users.id = financial_transactions.user_id AND users.role = ?", domain.RolePartner).
		Where("financial_transactions.type = ? AND financial_transactions.status = ? AND financial_transactions.available = ?",
			domain.TxTypeCommission, domain.TxStatusPending, true).
		Group("financial_transactions.user_id, users.username").
		Having("SUM(financial_transactions.amount_cents) > 0").
		Scan(&rows).Error
	return rows, err
}
