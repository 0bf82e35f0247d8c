package repository

import (
	"strconv"

	"roost/internal/domain"
	"roost/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(key string) (string, error) {
	var s models.PlatformSetting
	if err := r.db.Where("`key` = ?", key).First(&s).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

func (r *SettingRepository) Set(key, value string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.PlatformSetting{Key: key, Value: value}).Error
}

func (r *SettingRepository) GetAll() ([]models.PlatformSetting, error) {
	var list []models.PlatformSetting
	err := r.db.Order("`key` ASC").Find(&list).Error
	return list, err
}

// SeedDefaults inserts default settings if they don't already exist.
func (r *SettingRepository) SeedDefaults(defaults map[string]string) error {
	for k, v := range defaults {
		var count int64
		r.db.Model(&models.PlatformSetting{}).Where("`key` = ?", k).Count(&count)
		if count == 0 {
			if err := r.db.Create(&models.PlatformSetting{Key: k, Value: v}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Rates is the rate table resolved at one instant. Transitions snapshot these
// values into the booking row; later edits never touch historical bookings.
type Rates struct {
	CommissionRate              float64
	ServiceFeeRate              float64
	PartnerCommissionRate       float64
	PartnerPayoutThresholdCents int64
}

// Rates reads the current rate table, falling back to the seeded default for
// any missing or unparseable key.
func (r *SettingRepository) Rates() Rates {
	return Rates{
		CommissionRate:              r.rateOr(domain.SettingCommissionRate),
		ServiceFeeRate:              r.rateOr(domain.SettingServiceFeeRate),
		PartnerCommissionRate:       r.rateOr(domain.SettingPartnerCommissionRate),
		PartnerPayoutThresholdCents: r.intOr(domain.SettingPartnerPayoutThreshold),
	}
}

func (r *SettingRepository) rateOr(key string) float64 {
	fallback, _ := strconv.ParseFloat(domain.SettingDefaults[key], 64)
	val, err := r.Get(key)
	if err != nil || val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}

func (r *SettingRepository) intOr(key string) int64 {
	fallback, _ := strconv.ParseInt(domain.SettingDefaults[key], 10, 64)
	val, err := r.Get(key)
	if err != nil || val == "" {
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
