package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mandi/db"
	"mandi/live"
	"mandi/models"
	"mandi/mq"
	"mandi/rdx"
	"mandi/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StartWorker consumes order events from Redis, persists notifications
// and pushes them to connected websocket clients. It runs for the life
// of the process; every failure is logged and the next event is taken.
func StartWorker(hub *live.Hub) {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, mq.OrderEventsChannel)
	ch := sub.Channel()

	log.Println("[NotifyWorker] Listening for order events...")

	for msg := range ch {
		var event models.OrderEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[NotifyWorker] Failed to parse event: %v", err)
			continue
		}
		dispatch(ctx, hub, event)
	}
}

// dispatch fans one order event out to the affected users. The buyer
// hears about every event; the seller additionally hears about new
// orders, and about cancellations the buyer initiated.
func dispatch(ctx context.Context, hub *live.Hub, event models.OrderEvent) {
	recipients := []string{event.BuyerID}
	switch {
	case event.Event == "order-created":
		recipients = append(recipients, event.SellerID)
	case event.Event == "payment-confirmed":
		recipients = append(recipients, event.SellerID)
	case event.Status == models.StatusCancelled && event.ByBuyer:
		recipients = append(recipients, event.SellerID)
	}

	for _, userID := range recipients {
		notification := models.Notification{
			NotificationID: uuid.NewString(),
			UserID:         userID,
			OrderID:        event.OrderID,
			Message:        event.Message,
			CreatedAt:      time.Now(),
		}

		if _, err := db.NotificationCollection.InsertOne(ctx, notification); err != nil {
			log.Printf("[NotifyWorker] Failed to store notification for %s: %v", userID, err)
			continue
		}

		if data, err := json.Marshal(notification); err == nil {
			hub.Push(userID, data)
		}
	}
}

// GetNotifications returns the caller's notifications, newest first.
func GetNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(50)
	cursor, err := db.NotificationCollection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		http.Error(w, "Could not retrieve notifications", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var list []models.Notification
	if err := cursor.All(ctx, &list); err != nil {
		http.Error(w, "Error reading notifications", http.StatusInternalServerError)
		return
	}
	if len(list) == 0 {
		list = []models.Notification{}
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	res, err := db.NotificationCollection.UpdateOne(ctx,
		bson.M{"notificationId": ps.ByName("notifid"), "userId": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		http.Error(w, "Failed to update notification", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "read"})
}
