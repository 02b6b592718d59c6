package model

import "gorm.io/datatypes"

type StorageMode string

const (
	StorageModeLink   StorageMode = "link"
	StorageModeEmbed  StorageMode = "embed"
	StorageModeUpload StorageMode = "upload"
)

// swagger:model EnrichmentAsset
type EnrichmentAsset struct {
	BaseModel
	ModuleID    uint           `gorm:"index;not null" json:"moduleId"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	URL         string         `gorm:"size:1024" json:"url"`
	Provider    string         `gorm:"size:120" json:"provider"`
	StorageMode StorageMode    `gorm:"size:20;index" json:"storageMode"`
	GeneratedBy string         `gorm:"size:40" json:"generatedBy,omitempty"`
	Metadata    datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
}

func (EnrichmentAsset) TableName() string {
	return "enrichment_assets"
}
