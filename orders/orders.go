package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"mandi/db"
	"mandi/models"
	"mandi/mq"
	"mandi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TransitionOrder moves an order to a new status. Permission is checked
// before the transition table; the write itself is a compare-and-swap on
// the current status so a racing request loses cleanly.
func TransitionOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	actor := Actor{
		UserID: utils.GetUserIDFromRequest(r),
		Roles:  utils.GetRolesFromRequest(r),
	}
	if actor.UserID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		TargetStatus models.OrderStatus `json:"targetStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if !ValidStatus(input.TargetStatus) {
		http.Error(w, "Unknown target status", http.StatusBadRequest)
		return
	}

	updated, err := applyTransition(ctx, ps.ByName("orderid"), actor, input.TargetStatus)
	if err != nil {
		var illegal *IllegalTransitionError
		switch {
		case errors.Is(err, ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, "You are not allowed to perform this transition")
		case errors.As(err, &illegal):
			utils.RespondWithError(w, http.StatusConflict, illegal.Error())
		default:
			log.Println("TransitionOrder error:", err)
			http.Error(w, "Failed to update order", http.StatusInternalServerError)
		}
		return
	}

	byBuyer := actor.UserID == updated.BuyerID
	mq.EmitOrderEvent(models.OrderEvent{
		Event:       "status-changed",
		OrderID:     updated.OrderID,
		OrderNumber: updated.OrderNumber,
		BuyerID:     updated.BuyerID,
		SellerID:    updated.SellerID,
		Status:      updated.Status,
		ByBuyer:     byBuyer,
		Message:     fmt.Sprintf("Order %s is now %s", updated.OrderNumber, updated.Status),
	})

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func applyTransition(ctx context.Context, orderID string, actor Actor, target models.OrderStatus) (models.Order, error) {
	order, err := loadOrderFor(ctx, orderID, actor)
	if err != nil {
		return models.Order{}, err
	}

	if err := AuthorizeTransition(order, actor, target); err != nil {
		return models.Order{}, err
	}
	if err := CheckTransition(order.Status, target); err != nil {
		return models.Order{}, err
	}

	now := time.Now()
	casFilter := bson.M{"orderId": order.OrderID, "status": order.Status}
	update := bson.M{"$set": bson.M{"status": target, "updatedAt": now}}

	if target == models.StatusCancelled {
		// Cancellation flips status and restores the decremented stock in
		// one transaction. The CAS filter makes the restore exactly-once:
		// a repeated cancellation finds the order already CANCELLED and
		// the table rejects it before this point; a racing one loses the
		// CAS here.
		session, err := db.Client.StartSession()
		if err != nil {
			return models.Order{}, err
		}
		defer session.EndSession(ctx)

		txnOpts := options.Transaction().
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority())

		_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			res, err := db.OrderCollection.UpdateOne(sc, casFilter, update)
			if err != nil {
				return nil, err
			}
			if res.ModifiedCount == 0 {
				return nil, &IllegalTransitionError{From: order.Status, To: target}
			}
			for _, line := range order.Lines {
				_, err := db.ProductCollection.UpdateOne(sc,
					bson.M{"productId": line.ProductID},
					bson.M{
						"$inc": bson.M{"availableQuantity": line.Quantity},
						"$set": bson.M{"updatedAt": now},
					},
				)
				if err != nil {
					return nil, err
				}
			}
			return nil, nil
		}, txnOpts)
		if err != nil {
			return models.Order{}, err
		}
	} else {
		res, err := db.OrderCollection.UpdateOne(ctx, casFilter, update)
		if err != nil {
			return models.Order{}, err
		}
		if res.ModifiedCount == 0 {
			// Someone else moved the order first.
			return models.Order{}, &IllegalTransitionError{From: order.Status, To: target}
		}
	}

	order.Status = target
	order.UpdatedAt = now
	return order, nil
}

// loadOrderFor fetches an order visible to the actor. A missing order
// and an order the actor may not see are indistinguishable, so order
// existence never leaks to outsiders.
func loadOrderFor(ctx context.Context, orderID string, actor Actor) (models.Order, error) {
	var order models.Order
	err := db.OrderCollection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	if actor.UserID != order.BuyerID && actor.UserID != order.SellerID && !actor.isAdmin() {
		return models.Order{}, ErrNotFound
	}
	return order, nil
}

// GetOrder returns one order, visible only to its buyer, seller or an admin.
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := Actor{
		UserID: utils.GetUserIDFromRequest(r),
		Roles:  utils.GetRolesFromRequest(r),
	}
	if actor.UserID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	order, err := loadOrderFor(ctx, ps.ByName("orderid"), actor)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Println("GetOrder error:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// GetMyOrders lists the caller's orders as a buyer, newest first.
func GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listOrders(w, r, "buyerId")
}

// GetIncomingOrders lists orders received by the caller as a seller,
// with an optional ?status= filter.
func GetIncomingOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listOrders(w, r, "sellerId")
}

func listOrders(w http.ResponseWriter, r *http.Request, ownerField string) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := bson.M{ownerField: userID}
	if status := r.URL.Query().Get("status"); status != "" {
		if !ValidStatus(models.OrderStatus(status)) {
			http.Error(w, "Unknown status filter", http.StatusBadRequest)
			return
		}
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.OrderCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Println("listOrders Find error:", err)
		http.Error(w, "Could not retrieve orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var list []models.Order
	if err := cursor.All(ctx, &list); err != nil {
		http.Error(w, "Error reading orders", http.StatusInternalServerError)
		return
	}
	if len(list) == 0 {
		list = []models.Order{}
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}
