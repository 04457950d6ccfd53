package models

import "time"

// Receipt is an immutable snapshot of a closed order, kept for printing
// even if dishes are renamed or repriced later.
type Receipt struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderID       uint          `gorm:"not null;uniqueIndex" json:"order_id"`
	Order         Order         `gorm:"foreignKey:OrderID" json:"order"`
	ReceiptNumber string        `gorm:"type:varchar(50);not null" json:"receipt_number"`
	Total         float64       `gorm:"type:decimal(12,2);not null" json:"total"`
	WaiterName    string        `gorm:"type:varchar(255)" json:"waiter_name"`
	TableLocation string        `gorm:"type:varchar(100)" json:"table_location"`
	ReceiptItems  []ReceiptItem `gorm:"foreignKey:ReceiptID" json:"receipt_items"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

type ReceiptItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ReceiptID uint    `gorm:"not null" json:"receipt_id"`
	Receipt   Receipt `gorm:"-" json:"-"`

	DishID    uint    `gorm:"not null" json:"dish_id"`
	DishName  string  `gorm:"type:varchar(255);not null" json:"dish_name"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal  float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Notes     string  `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
