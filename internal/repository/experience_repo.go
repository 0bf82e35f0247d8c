package repository

import (
	"errors"

	"roost/internal/domain"
	"roost/internal/models"

	"gorm.io/gorm"
)

type ExperienceRepository struct {
	db *gorm.DB
}

func NewExperienceRepository(db *gorm.DB) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

func (r *ExperienceRepository) Create(e *models.Experience) error {
	return r.db.Create(e).Error
}

func (r *ExperienceRepository) GetByID(id uint) (*models.Experience, error) {
	var e models.Experience
	err := r.db.First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExperienceRepository) ListByHost(hostID uint) ([]models.Experience, error) {
	var list []models.Experience
	err := r.db.Where("host_id = ?", hostID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *ExperienceRepository) ListActive(limit, offset int) ([]models.Experience, error) {
	var list []models.Experience
	err := r.db.Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
