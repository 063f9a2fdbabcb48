package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"floorPilot/business/floorbandit"
	"floorPilot/domain"
	"floorPilot/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FloorBanditRepository struct {
	DB *gorm.DB
}

var (
	_ floorbandit.SnapshotRepository     = (*FloorBanditRepository)(nil)
	_ floorbandit.OutcomeEventRepository = (*FloorBanditRepository)(nil)
)

func NewFloorBanditRepository(db *gorm.DB) *FloorBanditRepository {
	return &FloorBanditRepository{DB: db}
}

// Migrate creates the snapshot table. The row type is private to this
// package, so the repository owns its migration instead of the domain
// model list in main.
func (r *FloorBanditRepository) Migrate() error {
	return r.DB.AutoMigrate(&floorExperimentRow{})
}

// ---- Events ----

func (r *FloorBanditRepository) SaveEvent(ctx context.Context, event domain.FloorOutcomeEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save outcome event: %w", err)
	}

	return nil
}

// ---- Snapshots ----

// floorExperimentRow stores one experiment as a JSON blob keyed by segment.
// The blob is the full candidate list, so a load after restart reproduces
// the exact posterior counts.
type floorExperimentRow struct {
	AdapterID string    `gorm:"column:adapter_id;primaryKey"`
	Geo       string    `gorm:"column:geo;primaryKey"`
	AdFormat  string    `gorm:"column:ad_format;primaryKey"`
	StateJSON []byte    `gorm:"column:state_json"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (floorExperimentRow) TableName() string {
	return "floor_experiments"
}

func (r *FloorBanditRepository) LoadAll(ctx context.Context) ([]*floorbandit.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []floorExperimentRow
	if err := r.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query floor_experiments: %w", err)
	}

	// a corrupt row loses one segment, never the whole warm start
	out := make([]*floorbandit.Experiment, 0, len(rows))
	for _, row := range rows {
		var exp floorbandit.Experiment
		if err := json.Unmarshal(row.StateJSON, &exp); err != nil {
			logger.Error("skipping malformed experiment snapshot",
				"adapter_id", row.AdapterID,
				"geo", row.Geo,
				"ad_format", row.AdFormat,
				"error", err,
			)
			continue
		}
		out = append(out, &exp)
	}

	return out, nil
}

func (r *FloorBanditRepository) Save(ctx context.Context, exp *floorbandit.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	raw, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to marshal experiment: %w", err)
	}

	row := floorExperimentRow{
		AdapterID: exp.AdapterID,
		Geo:       exp.Geo,
		AdFormat:  exp.AdFormat,
		StateJSON: raw,
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "adapter_id"}, {Name: "geo"}, {Name: "ad_format"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert floor_experiments: %w", err)
	}

	return nil
}

func (r *FloorBanditRepository) Delete(ctx context.Context, adapterID, geo, adFormat string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Where("adapter_id = ? AND geo = ? AND ad_format = ?", adapterID, geo, adFormat).
		Delete(&floorExperimentRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete floor_experiments row: %w", err)
	}

	return nil
}
