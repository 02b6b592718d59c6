package repository

import (
	"k12_curriculum_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PracticeItemRepository struct {
	DB *gorm.DB
}

func NewPracticeItemRepository(db *gorm.DB) *PracticeItemRepository {
	return &PracticeItemRepository{DB: db}
}

// ListByModule returns every item tagged with the module, whether through the
// structured column or a legacy metadata tag left by the old importers.
func (r *PracticeItemRepository) ListByModule(slug string) ([]model.PracticeItem, error) {
	var items []model.PracticeItem
	err := r.DB.
		Where(
			r.DB.Where("module_slug = ?", slug).
				Or(datatypes.JSONQuery("metadata").Equals(slug, "module_slug")),
		).
		Order("id asc").
		Find(&items).Error
	return items, err
}

// CreateBatch inserts items in one statement; gorm backfills the ids.
func (r *PracticeItemRepository) CreateBatch(items []model.PracticeItem) ([]model.PracticeItem, error) {
	if len(items) == 0 {
		return items, nil
	}
	err := r.DB.Create(&items).Error
	return items, err
}

func (r *PracticeItemRepository) UpdateStandards(ids []uint, standards datatypes.JSON) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.Model(&model.PracticeItem{}).
		Where("id IN ?", ids).
		Update("standards", standards).Error
}
