package repository

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"roost/internal/domain"
	"roost/internal/models"

	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// generatePartnerCode returns an 8-character hex referral code.
func generatePartnerCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetOrCreateCode returns the partner's existing code, or creates a new unique one.
func (r *PartnerRepository) GetOrCreateCode(partnerID uint) (*models.PartnerCode, error) {
	var pc models.PartnerCode
	if err := r.db.Where("partner_id = ?", partnerID).First(&pc).Error; err == nil {
		return &pc, nil
	}
	for i := 0; i < 10; i++ {
		code, err := generatePartnerCode()
		if err != nil {
			return nil, err
		}
		pc = models.PartnerCode{PartnerID: partnerID, Code: code, IsActive: true}
		if err := r.db.Create(&pc).Error; err == nil {
			return &pc, nil
		}
		// Collision: retry with a new code
	}
	return nil, fmt.Errorf("failed to generate a unique partner code after retries")
}

// GetByCode returns the active PartnerCode matching the given code string.
func (r *PartnerRepository) GetByCode(code string) (*models.PartnerCode, error) {
	var pc models.PartnerCode
	err := r.db.Where("code = ? AND is_active = ?", code, true).First(&pc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pc, nil
}
