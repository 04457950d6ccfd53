package models

import "time"

// Order statuses follow the kitchen flow.
const (
	OrderStatusOpen      = "open"
	OrderStatusCooking   = "cooking"
	OrderStatusReady     = "ready"
	OrderStatusClosed    = "closed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	TableID    uint        `gorm:"not null;index" json:"table_id"`
	Table      Table       `gorm:"foreignKey:TableID" json:"table"`
	WaiterID   *uint       `gorm:"index" json:"waiter_id,omitempty"`
	Waiter     *User       `gorm:"foreignKey:WaiterID" json:"waiter,omitempty"`
	BookingID  *uint       `gorm:"index" json:"booking_id,omitempty"`
	Booking    *Booking    `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Status     string      `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	TotalPrice float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_price"`
	IsWalkIn   bool        `gorm:"not null;default:false" json:"is_walk_in"`
	Comment    string      `gorm:"type:text" json:"comment"`
	ShiftDate  time.Time   `gorm:"not null;index" json:"shift_date"`
	ClosedAt   *time.Time  `json:"closed_at,omitempty"`
	CreatedAt  time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
