package models

import "time"

// OrderStatus is the payment lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// OrderItem is one purchased course. Items are fixed when the order is created.
type OrderItem struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string `json:"order_id" gorm:"type:varchar(36);index"`
	CourseID   string `json:"course_id" gorm:"type:varchar(36)"`
	CartItemID string `json:"cart_item_id" gorm:"type:varchar(36)"` // Cart line captured at checkout
	Price      int64  `json:"price"`                                // Price at the time of order
	Position   int    `json:"position"`
}

// Order records a checkout attempt and its payment lifecycle.
type Order struct {
	ID             string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string      `json:"user_id" gorm:"type:varchar(36);index"`
	GatewayOrderID string      `json:"gateway_order_id" gorm:"type:varchar(100);uniqueIndex"`
	PaymentID      *string     `json:"payment_id" gorm:"type:varchar(100)"`
	Amount         int64       `json:"amount"`
	Currency       string      `json:"currency" gorm:"type:varchar(3)"`
	Status         OrderStatus `json:"status" gorm:"type:varchar(20);index"`
	Items          []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	BuyerName      string      `json:"buyer_name" gorm:"type:varchar(200)"`
	BuyerEmail     string      `json:"buyer_email" gorm:"type:varchar(255)"`
	BuyerPhone     string      `json:"buyer_phone" gorm:"type:varchar(30)"`
	FailedAttempts int         `json:"failed_attempts"`
	FulfilledAt    *time.Time  `json:"fulfilled_at"` // Set once every item is enrolled
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Fulfilled reports whether enrollment fan-out finished for a paid order.
func (o *Order) Fulfilled() bool {
	return o.Status == OrderStatusPaid && o.FulfilledAt != nil
}

// CourseIDs returns the course ids of the order lines in order.
func (o *Order) CourseIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.CourseID)
	}
	return ids
}

// CartItemIDs returns the cart lines captured when the order was created.
func (o *Order) CartItemIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if item.CartItemID != "" {
			ids = append(ids, item.CartItemID)
		}
	}
	return ids
}
