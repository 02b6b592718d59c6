package repository

import (
	"k12_curriculum_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) FindByID(id uint) (*model.CurriculumModule, error) {
	var m model.CurriculumModule
	err := r.DB.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ModuleRepository) FindBySlug(slug string) (*model.CurriculumModule, error) {
	var m model.CurriculumModule
	err := r.DB.Where("slug = ?", slug).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Cells maps module ids onto their grade/subject cell for readiness gating.
func (r *ModuleRepository) Cells(ids []uint) (map[uint]model.ModuleCell, error) {
	if len(ids) == 0 {
		return map[uint]model.ModuleCell{}, nil
	}

	var rows []struct {
		ID        uint
		GradeBand string
		Subject   string
	}
	err := r.DB.Model(&model.CurriculumModule{}).
		Select("id, grade_band, subject").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	cells := make(map[uint]model.ModuleCell, len(rows))
	for _, row := range rows {
		cells[row.ID] = model.ModuleCell{
			ModuleID:  row.ID,
			GradeBand: row.GradeBand,
			Subject:   row.Subject,
		}
	}
	return cells, nil
}
