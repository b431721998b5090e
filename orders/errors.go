package orders

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrMissingDeliveryAddress  = errors.New("delivery address is required for home delivery")
	ErrInvalidPaymentReference = errors.New("UPI payment requires a 12-digit numeric reference id")
	ErrForbidden               = errors.New("forbidden")
	ErrNotFound                = errors.New("order not found")
)

// ProductNoLongerAvailableError reports which seller's group failed
// commit-time re-validation, so the buyer can drop the offending item
// and retry.
type ProductNoLongerAvailableError struct {
	SellerID    string
	ProductID   string
	ProductName string
}

func (e *ProductNoLongerAvailableError) Error() string {
	return fmt.Sprintf("product %q (seller %s) is no longer available in the requested quantity", e.ProductName, e.SellerID)
}
