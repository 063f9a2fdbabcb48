package postgres

import (
	"context"
	"errors"
	"time"

	"floorPilot/domain"

	"gorm.io/gorm"
)

type OperatorRepository struct {
	DB *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{
		DB: db,
	}
}

func (r *OperatorRepository) Create(ctx context.Context, operator *domain.Operator) error {
	if err := r.DB.WithContext(ctx).Create(&operator).Error; err != nil {
		return err
	}

	return nil
}

func (r *OperatorRepository) FindByID(ctx context.Context, id uint) (domain.Operator, error) {
	var operator domain.Operator

	err := r.DB.WithContext(ctx).First(&operator, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Operator{}, errors.New("operator not found")
		}
		return domain.Operator{}, err
	}

	return operator, nil
}

func (r *OperatorRepository) FindByEmail(ctx context.Context, email string) (domain.Operator, error) {
	var operator domain.Operator

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&operator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Operator{}, errors.New("operator not found")
		}
		return domain.Operator{}, err
	}

	return operator, nil
}

func (r *OperatorRepository) FindAll(ctx context.Context) ([]domain.Operator, error) {
	var operators []domain.Operator

	if err := r.DB.WithContext(ctx).Find(&operators).Error; err != nil {
		return nil, err
	}

	return operators, nil
}

func (r *OperatorRepository) Update(ctx context.Context, operator *domain.Operator) error {
	var existing domain.Operator
	if err := r.DB.WithContext(ctx).First(&existing, operator.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("operator not found")
		}
		return err
	}

	operator.UpdatedAt = time.Now()

	if err := r.DB.WithContext(ctx).Model(&domain.Operator{}).Where("id = ?", operator.ID).
		Select("full_name", "password", "role", "updated_at").
		Updates(operator).Error; err != nil {
		return err
	}

	return nil
}

func (r *OperatorRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&domain.Operator{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errors.New("operator not found or already deleted")
	}

	return nil
}
