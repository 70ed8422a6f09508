package models

import "time"

// Sale is a flat reporting row written alongside every order so revenue
// queries never join the order tables.
type Sale struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderDate   time.Time `gorm:"not null;index" json:"order_date"`
	TotalAmount float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	OrderType   string    `gorm:"type:varchar(50);not null" json:"order_type"`
}
