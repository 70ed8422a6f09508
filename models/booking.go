package models

import (
	"time"
)

// Booking statuses
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusExpired   = "expired"
)

type Booking struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CustomerID      uint      `gorm:"not null;index" json:"customer_id"`
	Customer        Customer  `gorm:"foreignKey:CustomerID" json:"customer"`
	BookingRef      string    `gorm:"type:varchar(20);unique;not null" json:"booking_ref"`
	BookingType     string    `gorm:"type:varchar(50);not null" json:"booking_type"`
	Details         string    `gorm:"type:text;not null" json:"details"`
	PreOrder        string    `gorm:"type:text" json:"pre_order"`
	TotalAmount     float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod   string    `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentDetails  string    `gorm:"type:text" json:"payment_details"`
	PaymentDeadline time.Time `gorm:"not null" json:"payment_deadline"`
	Status          string    `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}
