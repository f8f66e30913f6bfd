package domain

import "time"

// Order status values
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderStatuses lists every accepted status
var OrderStatuses = []string{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

// OrderItem is a priced line captured at checkout time
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Order belongs to a User via CustomerID
type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string      `gorm:"size:32;not null;uniqueIndex" json:"orderNumber"`
	CustomerID      int64       `gorm:"not null;index" json:"customerId"`
	Customer        *User       `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"customer,omitempty"`
	Items           []OrderItem `gorm:"type:text;serializer:json" json:"items"`
	TotalAmount     float64     `gorm:"not null" json:"totalAmount"`
	Status          string      `gorm:"size:32;not null;index" json:"status"`
	ShippingAddress string      `gorm:"size:1024" json:"shippingAddress"`
	Phone           string      `gorm:"size:32" json:"phone"`
	RazorpayOrderID string      `gorm:"size:64;index" json:"razorpayOrderId"`
	PaymentID       string      `gorm:"size:64" json:"paymentId"`
	PaidAt          *time.Time  `json:"paidAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// IsValidOrderStatus reports whether s is a known order status
func IsValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}
