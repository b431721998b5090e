package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"mandi/db"
	"mandi/globals"
	"mandi/middleware"
	"mandi/models"
	"mandi/rdx"
	"mandi/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	refreshTokenTTL = 7 * 24 * time.Hour
	accessTokenTTL  = 12 * time.Hour
)

func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Farmer    bool   `json:"farmer"`
		UPIHandle string `json:"upiHandle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.Username == "" || input.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	var existing models.User
	err := db.UserCollection.FindOne(context.TODO(), bson.M{"username": input.Username}).Decode(&existing)
	if err == nil {
		http.Error(w, "User already exists", http.StatusConflict)
		return
	} else if err != mongo.ErrNoDocuments {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password for user %s: %v", input.Username, err)
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		UserID:    "u" + utils.GenerateRandomString(10),
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashedPassword),
		Role:      []string{models.RoleUser},
		UPIHandle: input.UPIHandle,
		CreatedAt: time.Now(),
	}
	if input.Farmer {
		// The farmer role alone does not allow selling; eligibility also
		// requires a live subscription.
		user.Role = append(user.Role, models.RoleFarmer)
	}

	if err := rdx.RdxSet(fmt.Sprintf("users:%s", user.UserID), user.Username); err != nil {
		log.Printf("Failed to cache username: %v", err)
	}

	if _, err := db.UserCollection.InsertOne(context.TODO(), user); err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"userid":   user.UserID,
		"username": user.Username,
	})
}

func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	var storedUser models.User
	err := db.UserCollection.FindOne(context.TODO(), bson.M{"username": input.Username}).Decode(&storedUser)
	if err != nil {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedUser.Password), []byte(input.Password)); err != nil {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	claims := &middleware.Claims{
		Username: storedUser.Username,
		UserID:   storedUser.UserID,
		Role:     storedUser.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		http.Error(w, "Error generating refresh token", http.StatusInternalServerError)
		return
	}

	_, err = db.UserCollection.UpdateOne(
		context.TODO(),
		bson.M{"userid": storedUser.UserID},
		bson.M{"$set": bson.M{
			"refresh_token":  hashToken(refreshToken),
			"refresh_expiry": time.Now().Add(refreshTokenTTL),
			"last_login":     time.Now(),
		}},
	)
	if err != nil {
		http.Error(w, "Failed to store refresh token", http.StatusInternalServerError)
		return
	}

	if err := rdx.RdxHset("tokki", storedUser.UserID, tokenString); err != nil {
		log.Printf("Redis token storage failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":        tokenString,
		"refreshToken": refreshToken,
		"userid":       storedUser.UserID,
	})
}

func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := rdx.RdxHdel("tokki", userID); err != nil {
		log.Printf("Error removing token from Redis: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "logged out"})
}

// Generates a random refresh token
func generateRefreshToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

// Hashes a given token
func hashToken(token string) string {
	hash := sha256.New()
	hash.Write([]byte(token))
	return hex.EncodeToString(hash.Sum(nil))
}
