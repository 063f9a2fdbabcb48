package postgres

import (
	"context"
	"errors"

	"floorPilot/domain"

	"gorm.io/gorm"
)

type AppRepository struct {
	DB *gorm.DB
}

func NewAppRepository(db *gorm.DB) *AppRepository {
	return &AppRepository{
		DB: db,
	}
}

func (r *AppRepository) Create(ctx context.Context, app *domain.App) error {
	if err := r.DB.WithContext(ctx).Create(app).Error; err != nil {
		return err
	}

	return nil
}

func (r *AppRepository) FindByID(ctx context.Context, id uint) (domain.App, error) {
	var app domain.App

	err := r.DB.WithContext(ctx).First(&app, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.App{}, errors.New("app not found")
		}
		return domain.App{}, err
	}

	return app, nil
}

func (r *AppRepository) FindBySDKKey(ctx context.Context, sdkKey string) (domain.App, error) {
	var app domain.App

	err := r.DB.WithContext(ctx).Where("sdk_key = ?", sdkKey).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.App{}, errors.New("app not found")
		}
		return domain.App{}, err
	}

	return app, nil
}

func (r *AppRepository) FindAll(ctx context.Context) ([]domain.App, error) {
	var apps []domain.App

	if err := r.DB.WithContext(ctx).Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppRepository) UpdateSDKKey(ctx context.Context, id uint, sdkKey string) error {
	result := r.DB.WithContext(ctx).Model(&domain.App{}).Where("id = ?", id).Update("sdk_key", sdkKey)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("app not found")
	}

	return nil
}

func (r *AppRepository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.DB.WithContext(ctx).Model(&domain.App{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("app not found")
	}

	return nil
}
