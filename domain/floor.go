package domain

import (
	"time"

	"gorm.io/datatypes"
)

// FloorDecision is one served floor price, tagged with a decision id so the
// SDK can echo it back with the auction outcome.
type FloorDecision struct {
	DecisionID string  `json:"decision_id"`
	AdapterID  string  `json:"adapter_id"`
	Geo        string  `json:"geo"`
	AdFormat   string  `json:"ad_format"`
	Currency   string  `json:"currency"`
	FloorPrice float64 `json:"floor_price"`
	Mode       string  `json:"mode"`
}

// FloorOutcomeEvent is one reported auction outcome. Persisted append-only
// for offline analysis; Revenue is recorded but does not feed the reward
// model (binary win/loss only).
type FloorOutcomeEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AdapterID  string    `gorm:"column:adapter_id;not null;index:idx_outcome_segment" json:"adapter_id"`
	Geo        string    `gorm:"column:geo;not null;index:idx_outcome_segment" json:"geo"`
	AdFormat   string    `gorm:"column:ad_format;not null;index:idx_outcome_segment" json:"ad_format"`
	FloorPrice float64   `gorm:"column:floor_price;not null" json:"floor_price"`
	Won        bool      `gorm:"column:won;not null" json:"won"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Revenue    float64           `gorm:"column:revenue" json:"revenue"`
	Currency   string            `gorm:"column:currency" json:"currency"`
	DecisionID string            `gorm:"column:decision_id" json:"decision_id"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (FloorOutcomeEvent) TableName() string {
	return "floor_outcome_events"
}

// FloorExperimentStats is the aggregate view of one experiment.
type FloorExperimentStats struct {
	AdapterID   string    `json:"adapter_id"`
	Geo         string    `json:"geo"`
	AdFormat    string    `json:"ad_format"`
	Currency    string    `json:"currency"`
	TotalTrials uint64    `json:"total_trials"`
	BestFloor   float64   `json:"best_floor"`
	SuccessRate float64   `json:"success_rate"`
	Confidence  float64   `json:"confidence"`
	LastUpdated time.Time `json:"last_updated"`
}

// FloorCandidateStats is the per-arm drill-down used by the console.
type FloorCandidateStats struct {
	Price         float64 `json:"price"`
	Successes     uint64  `json:"successes"`
	Failures      uint64  `json:"failures"`
	Trials        uint64  `json:"trials"`
	EmpiricalRate float64 `json:"empirical_rate"`
	PosteriorMean float64 `json:"posterior_mean"`
	CredibleLow   float64 `json:"credible_low"`
	CredibleHigh  float64 `json:"credible_high"`
}

type FloorExperimentDetail struct {
	AdapterID   string                `json:"adapter_id"`
	Geo         string                `json:"geo"`
	AdFormat    string                `json:"ad_format"`
	Currency    string                `json:"currency"`
	TotalTrials uint64                `json:"total_trials"`
	BestFloor   float64               `json:"best_floor"`
	SuccessRate float64               `json:"success_rate"`
	Confidence  float64               `json:"confidence"`
	LastUpdated time.Time             `json:"last_updated"`
	Candidates  []FloorCandidateStats `json:"candidates"`
}
