package models

import "time"

type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

type DeliveryOption string

const (
	HomeDelivery DeliveryOption = "HOME_DELIVERY"
	SelfPickup   DeliveryOption = "SELF_PICKUP"
)

// Product is a farmer's listing. AvailableQuantity is mutated only by
// checkout (decrement) and cancellation (restore); everything else treats
// it as read-only.
type Product struct {
	ProductID       string           `json:"productId" bson:"productId"`
	SellerID        string           `json:"sellerId" bson:"sellerId"`
	Name            string           `json:"name" bson:"name"`
	Category        string           `json:"category,omitempty" bson:"category,omitempty"`
	Unit            string           `json:"unit,omitempty" bson:"unit,omitempty"` // e.g. "kg", "dozen"
	Price           float64          `json:"price" bson:"price"`
	AvailableQty    int              `json:"availableQuantity" bson:"availableQuantity"`
	DeliveryOptions []DeliveryOption `json:"deliveryOptions" bson:"deliveryOptions"`
	DeliveryFee     float64          `json:"deliveryFee" bson:"deliveryFee"`
	Status          ProductStatus    `json:"status" bson:"status"`
	CreatedAt       time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updatedAt"`
}

func (p Product) SupportsDelivery(opt DeliveryOption) bool {
	for _, o := range p.DeliveryOptions {
		if o == opt {
			return true
		}
	}
	return false
}
