package subs

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mandi/db"
	"mandi/models"
	"mandi/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var planDurations = map[string]time.Duration{
	"monthly": 30 * 24 * time.Hour,
	"yearly":  365 * 24 * time.Hour,
}

// Subscribe records a selling-subscription window for the calling farmer.
// Payment for the plan itself is out of band; this only creates the
// record the eligibility gate reads.
func Subscribe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !utils.HasRole(utils.GetRolesFromRequest(r), models.RoleFarmer) {
		http.Error(w, "Only farmers can subscribe", http.StatusForbidden)
		return
	}

	var input struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	duration, ok := planDurations[input.Plan]
	if !ok {
		http.Error(w, "Unknown plan", http.StatusBadRequest)
		return
	}

	now := time.Now()
	sub := models.Subscription{
		SubscriptionID: uuid.NewString(),
		UserID:         userID,
		Plan:           input.Plan,
		StartDate:      now,
		EndDate:        now.Add(duration),
		CreatedAt:      now,
	}

	if _, err := db.SubscriptionCollection.InsertOne(ctx, sub); err != nil {
		log.Println("Subscribe InsertOne error:", err)
		http.Error(w, "Failed to create subscription", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, sub)
}

// GetMySubscriptions lists the caller's subscription records, newest first.
func GetMySubscriptions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cursor, err := db.SubscriptionCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		http.Error(w, "Could not retrieve subscriptions", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var list []models.Subscription
	if err := cursor.All(ctx, &list); err != nil {
		http.Error(w, "Error reading subscriptions", http.StatusInternalServerError)
		return
	}
	if len(list) == 0 {
		list = []models.Subscription{}
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

// StartExpirySweep periodically deactivates listings of farmers whose
// subscriptions have all lapsed. Orders already created are untouched;
// only future listing and selling is affected.
func StartExpirySweep() {
	ticker := time.NewTicker(1 * time.Hour)
	for range ticker.C {
		sweepExpired()
	}
}

func sweepExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	now := time.Now()

	// Farmers with at least one live window.
	active, err := db.SubscriptionCollection.Distinct(ctx, "userId", bson.M{
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	})
	if err != nil {
		log.Println("Expiry sweep distinct error:", err)
		return
	}

	activeIDs := make([]string, 0, len(active))
	for _, v := range active {
		if id, ok := v.(string); ok {
			activeIDs = append(activeIDs, id)
		}
	}

	res, err := db.ProductCollection.UpdateMany(ctx,
		bson.M{
			"status":   models.ProductActive,
			"sellerId": bson.M{"$nin": activeIDs},
		},
		bson.M{"$set": bson.M{"status": models.ProductInactive, "updatedAt": now}},
	)
	if err != nil {
		log.Println("Expiry sweep update error:", err)
		return
	}
	if res.ModifiedCount > 0 {
		log.Printf("Expiry sweep deactivated %d listings", res.ModifiedCount)
	}
}
