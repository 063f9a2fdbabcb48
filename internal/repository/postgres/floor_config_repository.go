package postgres

import (
	"context"
	"encoding/json"

	"floorPilot/business/floorbandit"
	"floorPilot/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FloorConfigRepository struct {
	DB *gorm.DB
}

var _ floorbandit.ConfigRepository = (*FloorConfigRepository)(nil)

func NewFloorConfigRepository(db *gorm.DB) *FloorConfigRepository {
	return &FloorConfigRepository{DB: db}
}

func (r *FloorConfigRepository) GetConfig(ctx context.Context, adapterID string) (domain.FloorBanditConfig, bool, error) {
	var cfg domain.FloorBanditConfig

	err := r.DB.WithContext(ctx).
		Where("adapter_id = ?", adapterID).
		First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return domain.FloorBanditConfig{}, false, nil
	}
	if err != nil {
		return domain.FloorBanditConfig{}, false, err
	}

	if len(cfg.CandidatesRaw) > 0 {
		_ = json.Unmarshal(cfg.CandidatesRaw, &cfg.CandidatePrices)
	}
	return cfg, true, nil
}

func (r *FloorConfigRepository) UpsertConfig(ctx context.Context, cfg domain.FloorBanditConfig) error {
	// if the parsed ladder is set but the raw column is empty, serialize it
	if len(cfg.CandidatesRaw) == 0 && len(cfg.CandidatePrices) > 0 {
		raw, _ := json.Marshal(cfg.CandidatePrices)
		cfg.CandidatesRaw = raw
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "adapter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"candidates",
				"warmup_trials",
				"exploration_rate",
				"updated_at",
			}),
		}).
		Create(&cfg).Error
}
