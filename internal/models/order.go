package models

import "time"

// OrderStatusPending is the status every order is created with. Further
// status transitions (processing, delivered, ...) are driven by
// operational processes outside this service; no update or delete path
// for orders exists here.
const OrderStatusPending = "pending"

// PaymentCashOnDelivery is the only payment method the store offers.
const PaymentCashOnDelivery = "Cash on Delivery"

// Order is an immutable record of a completed checkout submission.
// Items and Total are a snapshot of the cart at submission time; later
// cart mutations never affect a stored order.
type Order struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string     `json:"user_id" gorm:"type:varchar(36);index"`
	UserEmail     string     `json:"user_email" gorm:"type:varchar(255)"`
	CustomerName  string     `json:"customer_name" gorm:"type:varchar(100)"`
	Mobile        string     `json:"mobile" gorm:"type:varchar(10)"`
	Hostel        string     `json:"hostel" gorm:"type:varchar(100)"`
	Room          string     `json:"room" gorm:"type:varchar(20)"`
	Items         []CartItem `json:"items" gorm:"serializer:json"`
	Total         int64      `json:"total"`
	PaymentMethod string     `json:"payment_method" gorm:"type:varchar(50)"`
	Status        string     `json:"status" gorm:"type:varchar(20)"`
	CreatedAt     time.Time  `json:"created_at" gorm:"index"` // server-assigned
}

// DeliveryDetails is the delivery form a customer submits at checkout.
// Field-level rules live in the checkout service, which reports the
// first failing field.
type DeliveryDetails struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Hostel string `json:"hostel"`
	Room   string `json:"room"`
}
