package models

import "time"

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Location  string    `gorm:"type:varchar(100);not null" json:"location"`
	Seats     int       `gorm:"not null" json:"seats"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
