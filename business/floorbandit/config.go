package floorbandit

import (
	"context"
	"time"

	"floorPilot/domain"
)

// Config carries the bandit knobs for one adapter. The default comes from
// the environment; a floor_bandit_configs row can override the ladder and
// the explore behavior per adapter.
type Config struct {
	CandidatePrices []float64

	// forced exploration: uniform picks until WarmUpTrials trials are
	// recorded, and with probability ExplorationRate afterwards
	WarmUpTrials    int
	ExplorationRate float64

	// initial pseudo-counts each candidate starts with
	PriorSuccesses uint64
	PriorFailures  uint64

	// budget for one detached snapshot/event write
	PersistTimeout time.Duration
}

const (
	defaultWarmUpTrials    = 100
	defaultExplorationRate = 0.10
	defaultPriorSuccesses  = 1
	defaultPriorFailures   = 1
	defaultPersistTimeout  = 5 * time.Second
)

func defaultCandidatePrices() []float64 {
	return []float64{0.10, 0.25, 0.50, 1.00, 2.00, 3.00, 5.00, 10.00}
}

func DefaultConfig() Config {
	return Config{
		CandidatePrices: defaultCandidatePrices(),
		WarmUpTrials:    defaultWarmUpTrials,
		ExplorationRate: defaultExplorationRate,
		PriorSuccesses:  defaultPriorSuccesses,
		PriorFailures:   defaultPriorFailures,
		PersistTimeout:  defaultPersistTimeout,
	}
}

// read per-adapter bandit config from DB.
type ConfigRepository interface {
	GetConfig(ctx context.Context, adapterID string) (domain.FloorBanditConfig, bool, error)
	UpsertConfig(ctx context.Context, cfg domain.FloorBanditConfig) error
}

// read admin-pinned floors from DB.
type OverrideRepository interface {
	GetOverride(ctx context.Context, adapterID, geo, adFormat string) (domain.FloorOverride, bool, error)
	UpsertOverride(ctx context.Context, override domain.FloorOverride) error
	DeleteOverride(ctx context.Context, adapterID, geo, adFormat string) error
}
