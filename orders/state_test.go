package orders

import (
	"errors"
	"testing"

	"mandi/models"
)

var allStatuses = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPacked,
	models.StatusOutForDelivery,
	models.StatusDelivered,
	models.StatusCancelled,
}

func TestTransitionTable(t *testing.T) {
	allowed := map[models.OrderStatus]map[models.OrderStatus]bool{
		models.StatusPending:        {models.StatusConfirmed: true, models.StatusCancelled: true},
		models.StatusConfirmed:      {models.StatusPacked: true, models.StatusCancelled: true},
		models.StatusPacked:         {models.StatusOutForDelivery: true, models.StatusCancelled: true},
		models.StatusOutForDelivery: {models.StatusDelivered: true, models.StatusCancelled: true},
		models.StatusDelivered:      {},
		models.StatusCancelled:      {},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := CanTransition(from, to)
			want := allowed[from][to]
			if got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []models.OrderStatus{models.StatusDelivered, models.StatusCancelled} {
		for _, to := range allStatuses {
			err := CheckTransition(from, to)
			if err == nil {
				t.Errorf("expected %s -> %s to be rejected", from, to)
				continue
			}
			var illegal *IllegalTransitionError
			if !errors.As(err, &illegal) {
				t.Errorf("expected IllegalTransitionError, got %v", err)
				continue
			}
			if illegal.From != from || illegal.To != to {
				t.Errorf("error names (%s, %s), want (%s, %s)", illegal.From, illegal.To, from, to)
			}
		}
	}
}

func TestSelfTransitionRejected(t *testing.T) {
	for _, s := range allStatuses {
		if CanTransition(s, s) {
			t.Errorf("self transition %s -> %s should be illegal", s, s)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	if ValidStatus("SHIPPED") {
		t.Error("ValidStatus should reject unknown statuses")
	}
}

func TestAuthorizeTransition(t *testing.T) {
	order := models.Order{
		OrderID:  "o1",
		BuyerID:  "buyer1",
		SellerID: "seller1",
		Status:   models.StatusPending,
	}

	seller := Actor{UserID: "seller1", Roles: []string{models.RoleFarmer}}
	buyer := Actor{UserID: "buyer1", Roles: []string{models.RoleUser}}
	admin := Actor{UserID: "admin1", Roles: []string{models.RoleAdmin}}
	stranger := Actor{UserID: "other", Roles: []string{models.RoleUser}}

	if err := AuthorizeTransition(order, seller, models.StatusConfirmed); err != nil {
		t.Errorf("seller should drive forward transitions: %v", err)
	}
	if err := AuthorizeTransition(order, seller, models.StatusCancelled); err != nil {
		t.Errorf("seller should cancel: %v", err)
	}
	if err := AuthorizeTransition(order, admin, models.StatusConfirmed); err != nil {
		t.Errorf("admin should drive forward transitions: %v", err)
	}

	if err := AuthorizeTransition(order, buyer, models.StatusConfirmed); !errors.Is(err, ErrForbidden) {
		t.Errorf("buyer must not confirm, got %v", err)
	}
	if err := AuthorizeTransition(order, buyer, models.StatusCancelled); err != nil {
		t.Errorf("buyer should cancel a PENDING order: %v", err)
	}

	// once confirmed, cancellation authority moves to the seller side
	order.Status = models.StatusConfirmed
	if err := AuthorizeTransition(order, buyer, models.StatusCancelled); !errors.Is(err, ErrForbidden) {
		t.Errorf("buyer must not cancel a CONFIRMED order, got %v", err)
	}
	if err := AuthorizeTransition(order, seller, models.StatusCancelled); err != nil {
		t.Errorf("seller should still cancel a CONFIRMED order: %v", err)
	}

	if err := AuthorizeTransition(order, stranger, models.StatusCancelled); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger must be rejected, got %v", err)
	}
}
