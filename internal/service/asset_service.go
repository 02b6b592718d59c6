package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/internal/repository"
	"k12_curriculum_backend/internal/util"

	"gorm.io/gorm"
)

// AssetService manages authored enrichment assets. Backfilled link assets are
// created by the gap filler, not here.
type AssetService struct {
	ModuleRepo *repository.ModuleRepository
	AssetRepo  *repository.EnrichmentAssetRepository
	Storage    *StorageService
}

func NewAssetService(moduleRepo *repository.ModuleRepository, assetRepo *repository.EnrichmentAssetRepository, storage *StorageService) *AssetService {
	return &AssetService{
		ModuleRepo: moduleRepo,
		AssetRepo:  assetRepo,
		Storage:    storage,
	}
}

// UploadEmbedded stores the file and records an embed-mode asset on the module.
func (s *AssetService) UploadEmbedded(ctx context.Context, moduleID uint, title, filename string, reader io.Reader, size int64, contentType string) (*model.EnrichmentAsset, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	objectName := fmt.Sprintf("assets/%s/%s_%s",
		module.Slug,
		time.Now().Format("20060102150405"),
		filepath.Base(filename),
	)
	url, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	asset := &model.EnrichmentAsset{
		ModuleID:    module.ID,
		Title:       title,
		URL:         url,
		StorageMode: model.StorageModeEmbed,
	}
	if err := s.AssetRepo.Create(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// AddLink records an authored link-mode asset on the module.
func (s *AssetService) AddLink(moduleID uint, title, url, provider string) (*model.EnrichmentAsset, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	asset := &model.EnrichmentAsset{
		ModuleID:    module.ID,
		Title:       title,
		URL:         url,
		Provider:    provider,
		StorageMode: model.StorageModeLink,
	}
	if err := s.AssetRepo.Create(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) ListByModule(moduleID uint) ([]model.EnrichmentAsset, error) {
	return s.AssetRepo.ListByModule(moduleID)
}
