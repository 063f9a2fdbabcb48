package domain

import "time"

// FloorBanditConfig is a per-adapter override of the bandit defaults. The
// candidate ladder is stored as a JSON array; CandidatePrices is the parsed
// form the repositories fill in on read.
type FloorBanditConfig struct {
	AdapterID string `json:"adapter_id" gorm:"primaryKey;column:adapter_id"`

	CandidatesRaw   []byte    `json:"-" gorm:"column:candidates"`
	CandidatePrices []float64 `json:"candidate_prices" gorm:"-"`

	WarmUpTrials    int     `json:"warmup_trials" gorm:"column:warmup_trials"`
	ExplorationRate float64 `json:"exploration_rate" gorm:"column:exploration_rate"`

	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (FloorBanditConfig) TableName() string {
	return "floor_bandit_configs"
}
