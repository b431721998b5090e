package pay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"mandi/db"
	"mandi/models"
	"mandi/mq"
	"mandi/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrWrongPaymentMethod = errors.New("order is not a UPI order")
	ErrAlreadyConfirmed   = errors.New("payment is already confirmed")
	ErrNotSeller          = errors.New("only the order's seller may confirm payment")
)

// checkConfirmPreconditions gates a payment confirmation: seller only,
// UPI only, one-way.
func checkConfirmPreconditions(order models.Order, actorID string) error {
	if actorID != order.SellerID {
		return ErrNotSeller
	}
	if order.PaymentMethod != models.PaymentUPI {
		return ErrWrongPaymentMethod
	}
	if order.PaymentStatus == models.PaymentConfirmed {
		return ErrAlreadyConfirmed
	}
	return nil
}

// ConfirmPayment marks a UPI order's payment as received. Only the
// order's seller may do this: the buyer asserted the reference at
// checkout, and confirmation is the seller's acknowledgement that the
// money arrived. It is one-way and independent of order status.
func ConfirmPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	order, err := loadOrder(ctx, ps.ByName("orderid"), userID, utils.GetRolesFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	switch err := checkConfirmPreconditions(order, userID); err {
	case nil:
	case ErrNotSeller:
		// Buyers and admins alike: confirmation is the seller's alone.
		utils.RespondWithError(w, http.StatusForbidden, "Only the seller can confirm payment")
		return
	case ErrWrongPaymentMethod:
		utils.RespondWithError(w, http.StatusBadRequest, "Payment confirmation applies to UPI orders only")
		return
	case ErrAlreadyConfirmed:
		utils.RespondWithError(w, http.StatusConflict, "Payment is already confirmed")
		return
	}

	now := time.Now()
	res, err := db.OrderCollection.UpdateOne(ctx,
		bson.M{
			"orderId":       order.OrderID,
			"paymentMethod": models.PaymentUPI,
			"paymentStatus": models.PaymentPending,
		},
		bson.M{"$set": bson.M{"paymentStatus": models.PaymentConfirmed, "updatedAt": now}},
	)
	if err != nil {
		log.Println("ConfirmPayment error:", err)
		http.Error(w, "Failed to confirm payment", http.StatusInternalServerError)
		return
	}
	if res.ModifiedCount == 0 {
		// Lost a race with another confirmation.
		utils.RespondWithError(w, http.StatusConflict, "Payment is already confirmed")
		return
	}

	order.PaymentStatus = models.PaymentConfirmed
	order.UpdatedAt = now

	mq.EmitOrderEvent(models.OrderEvent{
		Event:       "payment-confirmed",
		OrderID:     order.OrderID,
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID,
		SellerID:    order.SellerID,
		Message:     fmt.Sprintf("Payment for order %s confirmed by the seller", order.OrderNumber),
	})

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// GetUPIQR returns a UPI deep-link QR for the order total, addressed to
// the seller's UPI handle, so the buyer can pay from any UPI app.
func GetUPIQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	order, err := loadOrder(ctx, ps.ByName("orderid"), userID, utils.GetRolesFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.PaymentMethod != models.PaymentUPI {
		utils.RespondWithError(w, http.StatusBadRequest, "Order is cash on delivery")
		return
	}

	var seller models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": order.SellerID}).Decode(&seller); err != nil || seller.UPIHandle == "" {
		utils.RespondWithError(w, http.StatusNotFound, "Seller has no UPI handle on record")
		return
	}

	link := fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%.2f&tn=%s&cu=INR",
		url.QueryEscape(seller.UPIHandle),
		url.QueryEscape(seller.Username),
		order.TotalAmount,
		url.QueryEscape(order.OrderNumber),
	)

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// loadOrder fetches an order if the caller is a participant or admin.
// Outsiders cannot tell a hidden order from a missing one.
func loadOrder(ctx context.Context, orderID, userID string, roles []string) (models.Order, error) {
	var order models.Order
	err := db.OrderCollection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err != nil {
		return models.Order{}, err
	}
	if userID != order.BuyerID && userID != order.SellerID && !utils.HasRole(roles, models.RoleAdmin) {
		return models.Order{}, mongo.ErrNoDocuments
	}
	return order, nil
}
