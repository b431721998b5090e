package models

import "time"

// OrderEvent is what the order engine publishes after a successful commit.
// The notify worker fans it out; its failures never reach the engine.
type OrderEvent struct {
	Event       string      `json:"event"` // "order-created", "status-changed", "payment-confirmed"
	OrderID     string      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	BuyerID     string      `json:"buyerId"`
	SellerID    string      `json:"sellerId"`
	Status      OrderStatus `json:"status,omitempty"`
	ByBuyer     bool        `json:"byBuyer,omitempty"`
	Message     string      `json:"message,omitempty"`
}

type Notification struct {
	NotificationID string    `json:"notificationId" bson:"notificationId"`
	UserID         string    `json:"userId" bson:"userId"`
	OrderID        string    `json:"orderId,omitempty" bson:"orderId,omitempty"`
	Message        string    `json:"message" bson:"message"`
	Read           bool      `json:"read" bson:"read"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}
