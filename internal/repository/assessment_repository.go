package repository

import (
	"errors"

	"k12_curriculum_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

// FindByModule returns the module's assessment or nil when it has none.
func (r *AssessmentRepository) FindByModule(moduleID uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.Preload("Sections.Items").
		Where("module_id = ?", moduleID).
		Order("id asc").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create persists the assessment together with its sections and item links.
func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Model(&model.Assessment{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"purpose":   a.Purpose,
			"standards": a.Standards,
		}).Error
}
