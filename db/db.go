package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection         *mongo.Collection
	ProductCollection      *mongo.Collection
	CartCollection         *mongo.Collection
	OrderCollection        *mongo.Collection
	SubscriptionCollection *mongo.Collection
	NotificationCollection *mongo.Collection
	Client                 *mongo.Client
)

// Initialize MongoDB connection.
// Checkout and cancellation run multi-document transactions, so the
// target deployment must be a replica set (a single-node one is fine).
func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017/?replicaSet=rs0"
	}

	clientOptions := options.Client().ApplyURI(uri)
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("mandidb")
	UserCollection = database.Collection("users")
	ProductCollection = database.Collection("products")
	CartCollection = database.Collection("cart_lines")
	OrderCollection = database.Collection("orders")
	SubscriptionCollection = database.Collection("subscriptions")
	NotificationCollection = database.Collection("notifications")
}

// EnsureIndexes sets up the uniqueness the engine relies on: one cart
// line per (buyer, product) and globally unique order numbers. Called
// once at startup, before the server accepts traffic.
func EnsureIndexes(ctx context.Context) error {
	_, err := CartCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "buyerId", Value: 1}, {Key: "productId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_buyer_product"),
	})
	if err != nil {
		return err
	}

	_, err = OrderCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderNumber", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_order_number"),
	})
	if err != nil {
		return err
	}

	_, err = SubscriptionCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "endDate", Value: 1}},
		Options: options.Index().SetName("user_end_date"),
	})
	return err
}
