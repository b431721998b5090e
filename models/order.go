package models

import "time"

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusPacked         OrderStatus = "PACKED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentUPI PaymentMethod = "UPI"
	PaymentCOD PaymentMethod = "COD"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
)

// OrderLine is a frozen price/quantity snapshot taken at checkout.
// Never updated after the order is inserted.
type OrderLine struct {
	ProductID   string  `json:"productId" bson:"productId"`
	ProductName string  `json:"productName" bson:"productName"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unitPriceAtPurchase" bson:"unitPriceAtPurchase"`
	Subtotal    float64 `json:"lineSubtotal" bson:"lineSubtotal"`
}

// Order is a single-seller commitment created from one partition of a
// checkout. Seller and lines are immutable after creation; only status,
// payment fields and delivery proof may change. Cancellation is a status,
// never a deletion.
type Order struct {
	OrderID         string         `json:"orderId" bson:"orderId"`
	OrderNumber     string         `json:"orderNumber" bson:"orderNumber"`
	BuyerID         string         `json:"buyerId" bson:"buyerId"`
	SellerID        string         `json:"sellerId" bson:"sellerId"`
	Lines           []OrderLine    `json:"lines" bson:"lines"`
	Subtotal        float64        `json:"subtotal" bson:"subtotal"`
	DeliveryFee     float64        `json:"deliveryFee" bson:"deliveryFee"`
	TotalAmount     float64        `json:"totalAmount" bson:"totalAmount"`
	DeliveryOption  DeliveryOption `json:"deliveryOption" bson:"deliveryOption"`
	DeliveryAddress string         `json:"deliveryAddress,omitempty" bson:"deliveryAddress,omitempty"`
	PaymentMethod   PaymentMethod  `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus   PaymentStatus  `json:"paymentStatus" bson:"paymentStatus"`
	UPIReferenceID  string         `json:"upiReferenceId,omitempty" bson:"upiReferenceId,omitempty"`
	Status          OrderStatus    `json:"status" bson:"status"`
	DeliveryProof   string         `json:"deliveryProof,omitempty" bson:"deliveryProof,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}
