package postgres

import (
	"context"
	"errors"
	"fmt"

	"floorPilot/business/floorbandit"
	"floorPilot/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FloorOverrideRepository struct {
	DB *gorm.DB
}

var _ floorbandit.OverrideRepository = (*FloorOverrideRepository)(nil)

func NewFloorOverrideRepository(db *gorm.DB) *FloorOverrideRepository {
	return &FloorOverrideRepository{DB: db}
}

func (r *FloorOverrideRepository) GetOverride(ctx context.Context, adapterID, geo, adFormat string) (domain.FloorOverride, bool, error) {
	var override domain.FloorOverride

	err := r.DB.WithContext(ctx).
		Where("adapter_id = ? AND geo = ? AND ad_format = ?", adapterID, geo, adFormat).
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.FloorOverride{}, false, nil
	}
	if err != nil {
		return domain.FloorOverride{}, false, fmt.Errorf("failed to query floor_overrides: %w", err)
	}

	return override, true, nil
}

func (r *FloorOverrideRepository) ListOverrides(ctx context.Context) ([]domain.FloorOverride, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var overrides []domain.FloorOverride
	if err := r.DB.WithContext(ctx).Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to list floor_overrides: %w", err)
	}

	return overrides, nil
}

func (r *FloorOverrideRepository) UpsertOverride(ctx context.Context, override domain.FloorOverride) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "adapter_id"}, {Name: "geo"}, {Name: "ad_format"}},
			UpdateAll: true,
		}).
		Create(&override).Error
	if err != nil {
		return fmt.Errorf("failed to upsert floor_overrides: %w", err)
	}

	return nil
}

func (r *FloorOverrideRepository) DeleteOverride(ctx context.Context, adapterID, geo, adFormat string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("adapter_id = ? AND geo = ? AND ad_format = ?", adapterID, geo, adFormat).
		Delete(&domain.FloorOverride{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete floor_overrides row: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("override not found")
	}

	return nil
}
