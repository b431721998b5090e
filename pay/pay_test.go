package pay

import (
	"testing"

	"mandi/models"
)

func upiOrder() models.Order {
	return models.Order{
		OrderID:        "o1",
		BuyerID:        "buyer1",
		SellerID:       "seller1",
		PaymentMethod:  models.PaymentUPI,
		PaymentStatus:  models.PaymentPending,
		UPIReferenceID: "123456789012",
	}
}

func TestConfirmPreconditions(t *testing.T) {
	order := upiOrder()

	if err := checkConfirmPreconditions(order, "seller1"); err != nil {
		t.Errorf("seller confirming a pending UPI order: %v", err)
	}
	if err := checkConfirmPreconditions(order, "buyer1"); err != ErrNotSeller {
		t.Errorf("buyer must not confirm, got %v", err)
	}
	if err := checkConfirmPreconditions(order, "admin1"); err != ErrNotSeller {
		t.Errorf("admin must not confirm on the buyer's behalf, got %v", err)
	}

	cod := upiOrder()
	cod.PaymentMethod = models.PaymentCOD
	cod.UPIReferenceID = ""
	if err := checkConfirmPreconditions(cod, "seller1"); err != ErrWrongPaymentMethod {
		t.Errorf("COD order must fail with ErrWrongPaymentMethod, got %v", err)
	}

	confirmed := upiOrder()
	confirmed.PaymentStatus = models.PaymentConfirmed
	if err := checkConfirmPreconditions(confirmed, "seller1"); err != ErrAlreadyConfirmed {
		t.Errorf("second confirmation must fail with ErrAlreadyConfirmed, got %v", err)
	}
}
