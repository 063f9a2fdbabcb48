package domain

import "time"

// Adapter is a registered demand source (applovin, moloco, vungle, ...).
// Disabled adapters are refused floor decisions.
type Adapter struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name;unique;not null"`
	Enabled   bool      `json:"enabled" gorm:"column:enabled;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Adapter) TableName() string {
	return "adapters"
}
