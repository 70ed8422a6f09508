package models

import "time"

type Admin struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"type:varchar(100);unique;not null" json:"username"`
	Password  string `gorm:"type:varchar(255);not null" json:"-"`
	Role      string `gorm:"type:varchar(50);not null;default:'admin'" json:"role"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
