package repository

import (
	"k12_curriculum_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EnrichmentAssetRepository struct {
	DB *gorm.DB
}

func NewEnrichmentAssetRepository(db *gorm.DB) *EnrichmentAssetRepository {
	return &EnrichmentAssetRepository{DB: db}
}

// HasLinked reports whether the module already carries a link or embed asset,
// including legacy rows that only tag the module inside the metadata bag.
func (r *EnrichmentAssetRepository) HasLinked(moduleID uint, slug string) (bool, error) {
	var n int64
	err := r.DB.Model(&model.EnrichmentAsset{}).
		Where("storage_mode IN ?", []model.StorageMode{model.StorageModeLink, model.StorageModeEmbed}).
		Where(
			r.DB.Where("module_id = ?", moduleID).
				Or(datatypes.JSONQuery("metadata").Equals(slug, "module_slug")),
		).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *EnrichmentAssetRepository) Create(asset *model.EnrichmentAsset) error {
	return r.DB.Create(asset).Error
}

func (r *EnrichmentAssetRepository) ListByModule(moduleID uint) ([]model.EnrichmentAsset, error) {
	var assets []model.EnrichmentAsset
	err := r.DB.Where("module_id = ?", moduleID).Order("id asc").Find(&assets).Error
	return assets, err
}
