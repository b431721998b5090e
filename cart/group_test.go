package cart

import (
	"testing"

	"mandi/models"
)

func entry(sellerID, productID string, qty int, price, fee float64, opt models.DeliveryOption) models.CartEntry {
	return models.CartEntry{
		CartLine: models.CartLine{
			BuyerID:        "buyer1",
			ProductID:      productID,
			Quantity:       qty,
			DeliveryOption: opt,
		},
		Product: models.Product{
			ProductID:   productID,
			SellerID:    sellerID,
			Name:        productID,
			Price:       price,
			DeliveryFee: fee,
			Status:      models.ProductActive,
		},
	}
}

func TestGroupBySellerSplitsAndTotals(t *testing.T) {
	entries := []models.CartEntry{
		entry("sellerA", "tomato", 2, 30, 20, models.HomeDelivery),
		entry("sellerA", "onion", 3, 25, 40, models.HomeDelivery),
		entry("sellerB", "mango", 1, 120, 50, models.SelfPickup),
	}

	groups := GroupBySeller(entries)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	a := groups[0]
	if a.SellerID != "sellerA" {
		t.Fatalf("expected sellerA first, got %s", a.SellerID)
	}
	if a.Subtotal != 2*30+3*25 {
		t.Errorf("sellerA subtotal = %v, want %v", a.Subtotal, 2*30+3*25)
	}
	// fee is the max among home-delivery lines, not the sum
	if a.DeliveryFee != 40 {
		t.Errorf("sellerA deliveryFee = %v, want 40", a.DeliveryFee)
	}
	if a.Total != a.Subtotal+a.DeliveryFee {
		t.Errorf("sellerA total = %v, want subtotal+fee = %v", a.Total, a.Subtotal+a.DeliveryFee)
	}

	b := groups[1]
	if b.SellerID != "sellerB" {
		t.Fatalf("expected sellerB second, got %s", b.SellerID)
	}
	// pickup-only group ships free even though the product has a fee
	if b.DeliveryFee != 0 {
		t.Errorf("sellerB deliveryFee = %v, want 0", b.DeliveryFee)
	}
	if b.Total != 120 {
		t.Errorf("sellerB total = %v, want 120", b.Total)
	}
}

func TestGroupBySellerEmptyCart(t *testing.T) {
	groups := GroupBySeller(nil)
	if len(groups) != 0 {
		t.Fatalf("empty cart should yield no groups, got %d", len(groups))
	}
}

func TestValidateAdd(t *testing.T) {
	product := models.Product{
		Status:          models.ProductActive,
		AvailableQty:    5,
		DeliveryOptions: []models.DeliveryOption{models.SelfPickup},
	}

	if err := validateAdd(product, 5, models.SelfPickup); err != nil {
		t.Errorf("valid add rejected: %v", err)
	}
	if err := validateAdd(product, 6, models.SelfPickup); err != ErrInsufficientStock {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
	if err := validateAdd(product, 1, models.HomeDelivery); err != ErrDeliveryOptionNotSupported {
		t.Errorf("expected ErrDeliveryOptionNotSupported, got %v", err)
	}

	product.Status = models.ProductInactive
	if err := validateAdd(product, 1, models.SelfPickup); err != ErrProductUnavailable {
		t.Errorf("expected ErrProductUnavailable, got %v", err)
	}
}
