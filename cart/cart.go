package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"mandi/db"
	"mandi/models"
	"mandi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrProductUnavailable         = errors.New("product is not available")
	ErrInsufficientStock          = errors.New("requested quantity exceeds available stock")
	ErrDeliveryOptionNotSupported = errors.New("delivery option not supported for this product")
)

// AddToCart upserts the buyer's cart line for a product. Re-adding the
// same product replaces quantity and delivery option ("set my desired
// quantity" semantics), it does not add to them. The stock check here is
// advisory; checkout re-validates at commit time.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		ProductID      string                `json:"productId"`
		Quantity       int                   `json:"quantity"`
		DeliveryOption models.DeliveryOption `json:"deliveryOption"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Println("AddToCart decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.ProductID == "" || input.Quantity < 1 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{"productId": input.ProductID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Println("AddToCart product lookup error:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := validateAdd(product, input.Quantity, input.DeliveryOption); err != nil {
		switch err {
		case ErrProductUnavailable:
			utils.RespondWithError(w, http.StatusConflict, "Product is no longer available")
		case ErrInsufficientStock:
			utils.RespondWithError(w, http.StatusConflict, "Not enough stock for the requested quantity")
		case ErrDeliveryOptionNotSupported:
			utils.RespondWithError(w, http.StatusBadRequest, "Delivery option not supported for this product")
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	line := models.CartLine{
		BuyerID:        userID,
		ProductID:      input.ProductID,
		Quantity:       input.Quantity,
		DeliveryOption: input.DeliveryOption,
		AddedAt:        time.Now(),
	}

	filter := bson.M{"buyerId": userID, "productId": input.ProductID}
	update := bson.M{"$set": line}
	opts := options.Update().SetUpsert(true)

	if _, err := db.CartCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		log.Println("AddToCart UpdateOne error:", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, line)
}

// validateAdd checks a prospective cart line against the live product.
func validateAdd(product models.Product, quantity int, opt models.DeliveryOption) error {
	if product.Status != models.ProductActive {
		return ErrProductUnavailable
	}
	if product.AvailableQty < quantity {
		return ErrInsufficientStock
	}
	if !product.SupportsDelivery(opt) {
		return ErrDeliveryOptionNotSupported
	}
	return nil
}

// GetCart returns the buyer's cart joined with live product data,
// grouped by seller. An empty cart is an empty list, not an error.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := LoadEntries(ctx, userID)
	if err != nil {
		log.Println("GetCart load error:", err)
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, GroupBySeller(entries))
}

// RemoveFromCart deletes one line from the buyer's cart.
func RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	res, err := db.CartCollection.DeleteOne(ctx, bson.M{
		"buyerId":   userID,
		"productId": ps.ByName("productid"),
	})
	if err != nil {
		log.Println("RemoveFromCart DeleteOne error:", err)
		http.Error(w, "Failed to remove item", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Item not in cart", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "removed"})
}

// LoadEntries fetches the buyer's cart lines joined with their live
// products. Lines whose product has vanished entirely are skipped here;
// checkout performs the authoritative re-validation.
func LoadEntries(ctx context.Context, buyerID string) ([]models.CartEntry, error) {
	cursor, err := db.CartCollection.Find(ctx, bson.M{"buyerId": buyerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lines []models.CartLine
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []models.CartEntry{}, nil
	}

	productIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}

	prodCursor, err := db.ProductCollection.Find(ctx, bson.M{"productId": bson.M{"$in": productIDs}})
	if err != nil {
		return nil, err
	}
	defer prodCursor.Close(ctx)

	var products []models.Product
	if err := prodCursor.All(ctx, &products); err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	entries := make([]models.CartEntry, 0, len(lines))
	for _, l := range lines {
		product, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		entries = append(entries, models.CartEntry{CartLine: l, Product: product})
	}
	return entries, nil
}
