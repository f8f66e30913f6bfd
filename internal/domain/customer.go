package domain

import "time"

// Customer is a storefront contact managed by shop admins. It is independent
// of User accounts: walk-in and phone customers have no login.
type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Address   string    `gorm:"size:512" json:"address"`
	City      string    `gorm:"size:128" json:"city"`
	State     string    `gorm:"size:128" json:"state"`
	Pincode   string    `gorm:"size:16" json:"pincode"`
	Remark    string    `gorm:"size:512" json:"remark"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Customer) TableName() string {
	return "customers"
}
