package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"mandi/cart"
	"mandi/db"
	"mandi/models"
	"mandi/mq"
	"mandi/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var upiRefPattern = regexp.MustCompile(`^[0-9]{12}$`)

// CheckoutInput is the buyer's checkout request. The UPI reference is
// buyer-asserted evidence of an out-of-band transfer, recorded as-is and
// left for the seller to confirm; it is never verified against a bank.
type CheckoutInput struct {
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	UPIReferenceID  string               `json:"upiReferenceId,omitempty"`
	DeliveryAddress string               `json:"deliveryAddress,omitempty"`
}

// Checkout converts the buyer's cart into one order per seller, in a
// single transaction with the stock decrements and the cart clear.
func Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	created, err := runCheckout(ctx, userID, input)
	if err != nil {
		var unavailable *ProductNoLongerAvailableError
		switch {
		case errors.Is(err, ErrEmptyCart):
			utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, ErrMissingDeliveryAddress):
			utils.RespondWithError(w, http.StatusBadRequest, "Delivery address is required for home delivery")
		case errors.Is(err, ErrInvalidPaymentReference):
			utils.RespondWithError(w, http.StatusBadRequest, "UPI payment requires a 12-digit numeric reference id")
		case errors.As(err, &unavailable):
			utils.RespondWithError(w, http.StatusConflict, unavailable.Error())
		default:
			log.Println("Checkout error:", err)
			http.Error(w, "Checkout failed", http.StatusInternalServerError)
		}
		return
	}

	// Side effects only after the commit. Failures here are logged and
	// never affect the response.
	for _, order := range created {
		mq.EmitOrderEvent(models.OrderEvent{
			Event:       "order-created",
			OrderID:     order.OrderID,
			OrderNumber: order.OrderNumber,
			BuyerID:     order.BuyerID,
			SellerID:    order.SellerID,
			Status:      order.Status,
			Message:     fmt.Sprintf("New order %s placed", order.OrderNumber),
		})
	}

	utils.RespondWithJSON(w, http.StatusCreated, created)
}

func runCheckout(ctx context.Context, buyerID string, input CheckoutInput) ([]models.Order, error) {
	entries, err := cart.LoadEntries(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyCart
	}

	if err := ValidateCheckoutInput(entries, input); err != nil {
		return nil, err
	}

	groups := cart.GroupBySeller(entries)
	pending := make([]models.Order, 0, len(groups))
	now := time.Now()
	for _, group := range groups {
		pending = append(pending, BuildOrder(group, buyerID, input, now))
	}

	session, err := db.Client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		created := make([]models.Order, 0, len(pending))
		for _, order := range pending {
			// The decrement is the authoritative stock check: the filter
			// only matches an active product with enough units, so a
			// concurrent buyer taking the last unit makes this a no-op
			// and aborts the whole checkout.
			for _, line := range order.Lines {
				res, err := db.ProductCollection.UpdateOne(sc,
					bson.M{
						"productId":         line.ProductID,
						"status":            models.ProductActive,
						"availableQuantity": bson.M{"$gte": line.Quantity},
					},
					bson.M{
						"$inc": bson.M{"availableQuantity": -line.Quantity},
						"$set": bson.M{"updatedAt": now},
					},
				)
				if err != nil {
					return nil, err
				}
				if res.ModifiedCount == 0 {
					return nil, &ProductNoLongerAvailableError{
						SellerID:    order.SellerID,
						ProductID:   line.ProductID,
						ProductName: line.ProductName,
					}
				}
			}

			inserted, err := insertWithUniqueNumber(sc, order)
			if err != nil {
				return nil, err
			}
			created = append(created, inserted)
		}

		if _, err := db.CartCollection.DeleteMany(sc, bson.M{"buyerId": buyerID}); err != nil {
			return nil, err
		}
		return created, nil
	}, txnOpts)
	if err != nil {
		return nil, err
	}

	return result.([]models.Order), nil
}

// ValidateCheckoutInput rejects malformed checkouts before any mutation.
func ValidateCheckoutInput(entries []models.CartEntry, input CheckoutInput) error {
	switch input.PaymentMethod {
	case models.PaymentCOD:
	case models.PaymentUPI:
		if !upiRefPattern.MatchString(input.UPIReferenceID) {
			return ErrInvalidPaymentReference
		}
	default:
		return ErrInvalidPaymentReference
	}

	for _, e := range entries {
		if e.DeliveryOption == models.HomeDelivery && input.DeliveryAddress == "" {
			return ErrMissingDeliveryAddress
		}
	}
	return nil
}

// BuildOrder freezes one seller group into an order: prices are
// snapshotted from the live products at this instant, the group total
// becomes the order total.
func BuildOrder(group models.SellerCartGroup, buyerID string, input CheckoutInput, now time.Time) models.Order {
	lines := make([]models.OrderLine, 0, len(group.Entries))
	deliveryOption := models.SelfPickup
	for _, e := range group.Entries {
		lines = append(lines, models.OrderLine{
			ProductID:   e.ProductID,
			ProductName: e.Product.Name,
			Quantity:    e.Quantity,
			UnitPrice:   e.Product.Price,
			Subtotal:    e.Product.Price * float64(e.Quantity),
		})
		if e.DeliveryOption == models.HomeDelivery {
			deliveryOption = models.HomeDelivery
		}
	}

	order := models.Order{
		OrderID:        "o" + uuid.NewString(),
		OrderNumber:    NewOrderNumber(now),
		BuyerID:        buyerID,
		SellerID:       group.SellerID,
		Lines:          lines,
		Subtotal:       group.Subtotal,
		DeliveryFee:    group.DeliveryFee,
		TotalAmount:    group.Total,
		DeliveryOption: deliveryOption,
		PaymentMethod:  input.PaymentMethod,
		PaymentStatus:  models.PaymentPending,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if deliveryOption == models.HomeDelivery {
		order.DeliveryAddress = input.DeliveryAddress
	}
	if input.PaymentMethod == models.PaymentUPI {
		order.UPIReferenceID = input.UPIReferenceID
	}
	return order
}

// NewOrderNumber builds a human-readable order number: date prefix plus
// random digits. Uniqueness is enforced by the index on orderNumber;
// insertWithUniqueNumber retries on collision.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), utils.GenerateRandomDigitString(6))
}

// insertWithUniqueNumber inserts the order, first probing for an unused
// order number. A duplicate insert would abort the surrounding
// transaction, so collisions are resolved by lookup before the write;
// the unique index stays as the backstop.
func insertWithUniqueNumber(sc mongo.SessionContext, order models.Order) (models.Order, error) {
	for attempt := 0; attempt < 5; attempt++ {
		count, err := db.OrderCollection.CountDocuments(sc, bson.M{"orderNumber": order.OrderNumber})
		if err != nil {
			return models.Order{}, err
		}
		if count == 0 {
			if _, err := db.OrderCollection.InsertOne(sc, order); err != nil {
				return models.Order{}, err
			}
			return order, nil
		}
		order.OrderNumber = NewOrderNumber(time.Now())
	}
	return models.Order{}, errors.New("could not generate a unique order number")
}
