package models

import (
	"time"
)

type Customer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Fullname    string    `gorm:"type:varchar(100);not null" json:"fullname"`
	Birthday    time.Time `gorm:"type:date;not null" json:"birthday"`
	Contact     string    `gorm:"type:varchar(20);unique;not null" json:"contact"`
	Email       string    `gorm:"type:varchar(100);unique;not null" json:"email"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	IsVerified  bool      `gorm:"not null;default:false" json:"is_verified"`
	VerifyToken *string   `gorm:"type:varchar(100);index" json:"-"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
