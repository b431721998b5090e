package eligibility

import (
	"context"
	"time"

	"mandi/db"
	"mandi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CanSell reports whether a user may list produce right now: they must
// hold the farmer role and have at least one subscription whose validity
// window contains the current instant. The gate is read-only; it never
// touches subscription or role state, and losing eligibility later has
// no effect on orders that already exist.
func CanSell(ctx context.Context, userID string) (bool, error) {
	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, err
	}
	if !user.HasRole(models.RoleFarmer) {
		return false, nil
	}

	now := time.Now()
	count, err := db.SubscriptionCollection.CountDocuments(ctx, bson.M{
		"userId":    userID,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
