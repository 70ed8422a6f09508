package models

import (
	"time"
)

// Order types
const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypePreOrder = "pre_order"
)

type Order struct {
	ID          uint        `gorm:"primaryKey" json:"order_id"`
	SessionID   *string     `gorm:"type:varchar(50);index" json:"session_id,omitempty"`
	TableNumber int         `gorm:"not null;index" json:"table_number"`
	TotalAmount float64     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	OrderType   string      `gorm:"type:varchar(50);not null;default:'dine_in'" json:"order_type"`
	Items       string      `gorm:"type:text" json:"items"`
	Status      string      `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	OrderItems  []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
