package domain

import "time"

// App is a mediated application. SDKKey is the credential its SDK sends on
// the data-plane endpoints.
type App struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Platform  string    `json:"platform" gorm:"column:platform"`
	BundleID  string    `json:"bundle_id" gorm:"column:bundle_id;unique;not null"`
	SDKKey    string    `json:"sdk_key,omitempty" gorm:"column:sdk_key;index"`
	Active    bool      `json:"active" gorm:"column:active;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (App) TableName() string {
	return "apps"
}
