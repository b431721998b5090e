package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"mandi/db"
	"mandi/eligibility"
	"mandi/models"
	"mandi/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateListing creates a product for the calling farmer. Listing is
// gated on eligibility: farmer role plus a live subscription.
func CreateListing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ok, err := eligibility.CanSell(ctx, userID)
	if err != nil {
		log.Println("CreateListing eligibility error:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Selling requires a farmer account with an active subscription", http.StatusForbidden)
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if product.Name == "" || product.Price <= 0 || product.AvailableQty < 0 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}
	if len(product.DeliveryOptions) == 0 {
		http.Error(w, "At least one delivery option is required", http.StatusBadRequest)
		return
	}
	for _, opt := range product.DeliveryOptions {
		if opt != models.HomeDelivery && opt != models.SelfPickup {
			http.Error(w, "Unknown delivery option", http.StatusBadRequest)
			return
		}
	}

	now := time.Now()
	product.ProductID = "p" + uuid.NewString()
	product.SellerID = userID
	product.Status = models.ProductActive
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := db.ProductCollection.InsertOne(ctx, product); err != nil {
		log.Println("CreateListing InsertOne error:", err)
		http.Error(w, "Failed to create listing", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateListing lets the seller change price, delivery terms or status.
// Stock is deliberately not updatable here: availableQuantity is owned by
// the checkout decrement and the cancellation restore.
func UpdateListing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		Price           *float64                `json:"price"`
		DeliveryFee     *float64                `json:"deliveryFee"`
		DeliveryOptions []models.DeliveryOption `json:"deliveryOptions"`
		Status          *models.ProductStatus   `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Price != nil {
		if *input.Price <= 0 {
			http.Error(w, "Invalid price", http.StatusBadRequest)
			return
		}
		set["price"] = *input.Price
	}
	if input.DeliveryFee != nil {
		set["deliveryFee"] = *input.DeliveryFee
	}
	if len(input.DeliveryOptions) > 0 {
		set["deliveryOptions"] = input.DeliveryOptions
	}
	if input.Status != nil {
		if *input.Status != models.ProductActive && *input.Status != models.ProductInactive {
			http.Error(w, "Unknown status", http.StatusBadRequest)
			return
		}
		set["status"] = *input.Status
	}

	res, err := db.ProductCollection.UpdateOne(ctx,
		bson.M{"productId": ps.ByName("productid"), "sellerId": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		log.Println("UpdateListing error:", err)
		http.Error(w, "Failed to update listing", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Listing not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "updated"})
}

// GetProduct returns one product by id.
func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{"productId": ps.ByName("productid")}).Decode(&product)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, product)
}

// GetProducts lists active products with search/category filters and
// price/name sorting.
func GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	sellerID := r.URL.Query().Get("seller")
	sortParam := r.URL.Query().Get("sort")

	limit := int64(20)
	offset := int64(0)
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = int64(l)
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = int64(o)
	}

	filter := bson.M{"status": models.ProductActive}
	if category != "" {
		filter["category"] = category
	}
	if sellerID != "" {
		filter["sellerId"] = sellerID
	}
	if search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	sort := bson.D{{Key: "name", Value: 1}}
	switch sortParam {
	case "price_asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sort = bson.D{{Key: "price", Value: -1}}
	case "name_desc":
		sort = bson.D{{Key: "name", Value: -1}}
	}

	findOptions := options.Find().SetLimit(limit).SetSkip(offset).SetSort(sort)

	cursor, err := db.ProductCollection.Find(ctx, filter, findOptions)
	if err != nil {
		http.Error(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var items []models.Product
	if err := cursor.All(ctx, &items); err != nil {
		http.Error(w, "Failed to decode products", http.StatusInternalServerError)
		return
	}
	if len(items) == 0 {
		items = []models.Product{}
	}

	count, err := db.ProductCollection.CountDocuments(ctx, filter)
	if err != nil {
		http.Error(w, "Failed to count products", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"items": items,
		"total": count,
	})
}
