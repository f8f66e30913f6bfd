package domain

import "time"

// Offer promotional banner / coupon shown on the storefront
type Offer struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Code            string     `gorm:"size:64;index" json:"code"`
	DiscountPercent float64    `json:"discountPercent"`
	Image           string     `gorm:"size:1024" json:"image"`
	Active          bool       `gorm:"not null;default:true;index" json:"active"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TableName Specify table name
func (Offer) TableName() string {
	return "offers"
}
