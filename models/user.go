package models

import "time"

const (
	RoleUser   = "user"
	RoleFarmer = "farmer"
	RoleAdmin  = "admin"
)

type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty"`
	Password      string    `json:"-" bson:"password"`
	Role          []string  `json:"role" bson:"role"`
	UPIHandle     string    `json:"upiHandle,omitempty" bson:"upiHandle,omitempty"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Role {
		if r == role {
			return true
		}
	}
	return false
}

// Subscription is a farmer's paid selling window. The order engine only
// ever reads these; the expiry sweep is the one writer of farmer roles.
type Subscription struct {
	SubscriptionID string    `json:"subscriptionId" bson:"subscriptionId"`
	UserID         string    `json:"userId" bson:"userId"`
	Plan           string    `json:"plan" bson:"plan"`
	StartDate      time.Time `json:"startDate" bson:"startDate"`
	EndDate        time.Time `json:"endDate" bson:"endDate"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

func (s Subscription) ActiveAt(t time.Time) bool {
	return !t.Before(s.StartDate) && !t.After(s.EndDate)
}
