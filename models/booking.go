package models

import "time"

// Booking statuses. Completed, Cancelled and Converted are terminal.
const (
	BookingStatusActive    = "Active"
	BookingStatusCompleted = "Completed"
	BookingStatusCancelled = "Cancelled"
	BookingStatusConverted = "Converted"
)

type Booking struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableID     uint      `gorm:"not null;index" json:"table_id"`
	Table       Table     `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	ClientName  string    `gorm:"type:varchar(100);not null" json:"client_name"`
	ClientPhone string    `gorm:"type:varchar(20);not null;index" json:"client_phone"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Comment     string    `gorm:"type:text" json:"comment"`
	Status      string    `gorm:"type:varchar(20);not null;default:'Active';index" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// IsTerminal reports whether the booking can no longer change state.
func (b *Booking) IsTerminal() bool {
	return b.Status != BookingStatusActive
}
