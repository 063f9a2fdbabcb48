package postgres

import (
	"context"
	"errors"
	"fmt"

	"floorPilot/domain"

	"gorm.io/gorm"
)

type AdapterRepository struct {
	DB *gorm.DB
}

func NewAdapterRepository(db *gorm.DB) *AdapterRepository {
	return &AdapterRepository{
		DB: db,
	}
}

func (r *AdapterRepository) Create(ctx context.Context, adapter *domain.Adapter) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(adapter).Error; err != nil {
		return fmt.Errorf("failed to create adapter: %w", err)
	}

	return nil
}

func (r *AdapterRepository) FindByID(ctx context.Context, id uint) (domain.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Adapter{}, fmt.Errorf("context error: %w", err)
	}

	var adapter domain.Adapter

	err := r.DB.WithContext(ctx).First(&adapter, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Adapter{}, errors.New("adapter not found")
		}
		return domain.Adapter{}, fmt.Errorf("failed to find adapter: %w", err)
	}

	return adapter, nil
}

func (r *AdapterRepository) FindByName(ctx context.Context, name string) (domain.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Adapter{}, fmt.Errorf("context error: %w", err)
	}

	var adapter domain.Adapter

	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&adapter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Adapter{}, errors.New("adapter not found")
		}
		return domain.Adapter{}, fmt.Errorf("failed to find adapter: %w", err)
	}

	return adapter, nil
}

func (r *AdapterRepository) FindAll(ctx context.Context) ([]domain.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var adapters []domain.Adapter
	err := r.DB.WithContext(ctx).Find(&adapters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find adapters: %w", err)
	}

	return adapters, nil
}

func (r *AdapterRepository) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Adapter{}).Where("id = ?", id).Update("enabled", enabled)
	if result.Error != nil {
		return fmt.Errorf("failed to update adapter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("adapter not found")
	}

	return nil
}

func (r *AdapterRepository) Delete(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Adapter{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete adapter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("adapter not found")
	}

	return nil
}
