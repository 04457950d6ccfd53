package models

import "time"

type Dish struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	CategoryID  uint         `gorm:"not null" json:"category_id"`
	Category    DishCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Composition string       `gorm:"type:text" json:"composition"`
	Weight      string       `gorm:"type:varchar(50)" json:"weight"`
	Price       float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	CookingTime int          `json:"cooking_time"`
	IsAvailable bool         `gorm:"not null;default:true" json:"is_available"`
	IsDeleted   bool         `gorm:"not null;default:false" json:"is_deleted"`
	ImageUrl    *string      `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}
