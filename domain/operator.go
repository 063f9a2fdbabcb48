package domain

import (
	"time"

	"gorm.io/gorm"
)

// Operator is a console account (dashboard users, not end users).
type Operator struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	FullName  string `json:"full_name" gorm:"column:full_name;not null"`
	Email     string `json:"email" gorm:"column:email;unique;not null"`
	Password  string `json:"-" gorm:"column:password;not null"`
	Role      string `json:"role" gorm:"column:role;default:viewer"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Operator) TableName() string {
	return "operators"
}
