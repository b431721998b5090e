package models

import "time"

// CartLine is a buyer's pending intent to purchase one product.
// Unique on (buyerId, productId); re-adding replaces quantity and option.
type CartLine struct {
	BuyerID        string         `json:"buyerId" bson:"buyerId"`
	ProductID      string         `json:"productId" bson:"productId"`
	Quantity       int            `json:"quantity" bson:"quantity"`
	DeliveryOption DeliveryOption `json:"deliveryOption" bson:"deliveryOption"`
	AddedAt        time.Time      `json:"addedAt" bson:"addedAt"`
}

// CartEntry is a cart line joined with its live product snapshot,
// as returned to the buyer.
type CartEntry struct {
	CartLine `bson:",inline"`
	Product  Product `json:"product" bson:"product"`
}

// SellerCartGroup is one seller's slice of a buyer's cart with its
// pricing rollup. Checkout turns each group into one order.
type SellerCartGroup struct {
	SellerID    string      `json:"sellerId"`
	Entries     []CartEntry `json:"entries"`
	Subtotal    float64     `json:"subtotal"`
	DeliveryFee float64     `json:"deliveryFee"`
	Total       float64     `json:"total"`
}
