package orders

import (
	"fmt"

	"mandi/models"
)

// transitions is the authoritative map of legal status changes.
// DELIVERED and CANCELLED are terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:        {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusPacked, models.StatusCancelled},
	models.StatusPacked:         {models.StatusOutForDelivery, models.StatusCancelled},
	models.StatusOutForDelivery: {models.StatusDelivered, models.StatusCancelled},
	models.StatusDelivered:      {},
	models.StatusCancelled:      {},
}

// IllegalTransitionError names the attempted (from, to) pair.
type IllegalTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s models.OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether from → to is in the transition table.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an IllegalTransitionError for any pair the
// table does not allow.
func CheckTransition(from, to models.OrderStatus) error {
	if !CanTransition(from, to) {
		return &IllegalTransitionError{From: from, To: to}
	}
	return nil
}

// Actor is who is asking for a transition, resolved from the session.
type Actor struct {
	UserID string
	Roles  []string
}

func (a Actor) isAdmin() bool {
	for _, r := range a.Roles {
		if r == models.RoleAdmin {
			return true
		}
	}
	return false
}

// AuthorizeTransition is the permission layer in front of the transition
// table. The seller of the order (or an admin) may drive any transition
// the table allows. The buyer may only cancel, and only while the order
// is still PENDING; after a seller confirms, cancellation authority is
// the seller's alone. Anyone else is rejected outright.
func AuthorizeTransition(order models.Order, actor Actor, target models.OrderStatus) error {
	if actor.UserID == order.SellerID || actor.isAdmin() {
		return nil
	}
	if actor.UserID == order.BuyerID {
		if target == models.StatusCancelled && order.Status == models.StatusPending {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}
