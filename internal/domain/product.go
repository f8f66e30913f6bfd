package domain

import "time"

// Product catalog item
type Product struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"size:255;not null;index" json:"name"`
	OriginalPrice   float64   `gorm:"not null" json:"originalPrice"`
	DiscountedPrice float64   `gorm:"not null" json:"discountedPrice"`
	Image           string    `gorm:"size:1024;not null" json:"image"` // hosted URL or local path
	Description     string    `gorm:"type:text;not null" json:"description"`
	Category        string    `gorm:"size:128;not null;index" json:"category"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
