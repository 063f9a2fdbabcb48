package domain

import "time"

// FloorOverride pins a fixed floor for one segment. When present, the
// decision path returns it and skips the bandit entirely.
type FloorOverride struct {
	AdapterID  string    `json:"adapter_id" gorm:"primaryKey;column:adapter_id"`
	Geo        string    `json:"geo" gorm:"primaryKey;column:geo"`
	AdFormat   string    `json:"ad_format" gorm:"primaryKey;column:ad_format"`
	FloorPrice float64   `json:"floor_price" gorm:"column:floor_price;not null"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (FloorOverride) TableName() string {
	return "floor_overrides"
}
