package orders

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"mandi/models"
)

func cartEntry(sellerID, productID string, qty int, price, fee float64, opt models.DeliveryOption) models.CartEntry {
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

func TestValidateCheckoutInput(t *testing.T) {
	pickup := []models.CartEntry{cartEntry("s1", "p1", 1, 10, 0, models.SelfPickup)}
	home := []models.CartEntry{cartEntry("s1", "p1", 1, 10, 20, models.HomeDelivery)}

	cases := []struct {
		name    string
		entries []models.CartEntry
		input   CheckoutInput
		wantErr error
	}{
		{"cod pickup", pickup, CheckoutInput{PaymentMethod: models.PaymentCOD}, nil},
		{"cod home with address", home, CheckoutInput{PaymentMethod: models.PaymentCOD, DeliveryAddress: "12 Market Rd"}, nil},
		{"home without address", home, CheckoutInput{PaymentMethod: models.PaymentCOD}, ErrMissingDeliveryAddress},
		{"upi valid ref", pickup, CheckoutInput{PaymentMethod: models.PaymentUPI, UPIReferenceID: "123456789012"}, nil},
		{"upi short ref", pickup, CheckoutInput{PaymentMethod: models.PaymentUPI, UPIReferenceID: "12345"}, ErrInvalidPaymentReference},
		{"upi alpha ref", pickup, CheckoutInput{PaymentMethod: models.PaymentUPI, UPIReferenceID: "12345678901a"}, ErrInvalidPaymentReference},
		{"upi missing ref", pickup, CheckoutInput{PaymentMethod: models.PaymentUPI}, ErrInvalidPaymentReference},
		{"unknown method", pickup, CheckoutInput{PaymentMethod: "CARD"}, ErrInvalidPaymentReference},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCheckoutInput(tc.entries, tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestBuildOrderFreezesPricesAndTotals(t *testing.T) {
	group := models.SellerCartGroup{
		SellerID: "sellerA",
		Entries: []models.CartEntry{
			cartEntry("sellerA", "tomato", 2, 30, 20, models.HomeDelivery),
			cartEntry("sellerA", "onion", 3, 25, 10, models.SelfPickup),
		},
		Subtotal:    135,
		DeliveryFee: 20,
		Total:       155,
	}
	input := CheckoutInput{
		PaymentMethod:   models.PaymentUPI,
		UPIReferenceID:  "123456789012",
		DeliveryAddress: "12 Market Rd",
	}

	order := BuildOrder(group, "buyer1", input, time.Now())

	if order.SellerID != "sellerA" || order.BuyerID != "buyer1" {
		t.Fatalf("wrong parties: %s / %s", order.SellerID, order.BuyerID)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
	if order.Lines[0].UnitPrice != 30 || order.Lines[0].Subtotal != 60 {
		t.Errorf("line 0 snapshot wrong: %+v", order.Lines[0])
	}

	var lineSum float64
	for _, l := range order.Lines {
		lineSum += l.Subtotal
	}
	if lineSum != order.Subtotal {
		t.Errorf("line subtotals sum to %v, order subtotal %v", lineSum, order.Subtotal)
	}
	if order.TotalAmount != order.Subtotal+order.DeliveryFee {
		t.Errorf("totalAmount %v != subtotal %v + fee %v", order.TotalAmount, order.Subtotal, order.DeliveryFee)
	}

	// any home-delivery line makes the whole order home delivery
	if order.DeliveryOption != models.HomeDelivery {
		t.Errorf("deliveryOption = %s, want HOME_DELIVERY", order.DeliveryOption)
	}
	if order.DeliveryAddress != "12 Market Rd" {
		t.Errorf("address not carried: %q", order.DeliveryAddress)
	}

	if order.Status != models.StatusPending {
		t.Errorf("new order status = %s, want PENDING", order.Status)
	}
	if order.PaymentStatus != models.PaymentPending {
		t.Errorf("new order paymentStatus = %s, want PENDING", order.PaymentStatus)
	}
	if order.UPIReferenceID != "123456789012" {
		t.Errorf("UPI reference not recorded: %q", order.UPIReferenceID)
	}
}

func TestBuildOrderPickupOnly(t *testing.T) {
	group := models.SellerCartGroup{
		SellerID: "sellerB",
		Entries:  []models.CartEntry{cartEntry("sellerB", "mango", 1, 120, 50, models.SelfPickup)},
		Subtotal: 120,
		Total:    120,
	}
	order := BuildOrder(group, "buyer1", CheckoutInput{PaymentMethod: models.PaymentCOD, DeliveryAddress: "unused"}, time.Now())

	if order.DeliveryOption != models.SelfPickup {
		t.Errorf("deliveryOption = %s, want SELF_PICKUP", order.DeliveryOption)
	}
	if order.DeliveryAddress != "" {
		t.Errorf("pickup order should not carry an address, got %q", order.DeliveryAddress)
	}
	if order.DeliveryFee != 0 || order.TotalAmount != 120 {
		t.Errorf("pickup order fee/total wrong: %v / %v", order.DeliveryFee, order.TotalAmount)
	}
	if order.UPIReferenceID != "" {
		t.Errorf("COD order should not carry a UPI reference")
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-\d{6}$`)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		n := NewOrderNumber(now)
		if !pattern.MatchString(n) {
			t.Fatalf("order number %q does not match ORD-YYYYMMDD-NNNNNN", n)
		}
		if n[4:12] != "20260831" {
			t.Fatalf("order number %q has wrong date prefix", n)
		}
	}
}
