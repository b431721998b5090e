package middleware

import (
	"context"
	"fmt"
	"net/http"

	"mandi/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Username string   `json:"username"`
	UserID   string   `json:"userId"`
	Role     []string `json:"role"`
	jwt.RegisteredClaims
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if websocket.IsWebSocketUpgrade(r) {
			// Websocket clients pass the token as a query param; the
			// handler validates it after the upgrade.
			next(w, r, ps)
			return
		}

		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
			return globals.JwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RolesKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

// ValidateRawToken validates a bare token string (no "Bearer " prefix),
// used by the websocket notification stream.
func ValidateRawToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("invalid token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("unauthorized")
	}
	return claims, nil
}
