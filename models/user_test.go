package models

import (
	"testing"
	"time"
)

func TestSubscriptionActiveAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	sub := Subscription{StartDate: start, EndDate: end}

	if !sub.ActiveAt(start) || !sub.ActiveAt(end) {
		t.Error("window bounds should be inclusive")
	}
	if !sub.ActiveAt(start.Add(15 * 24 * time.Hour)) {
		t.Error("mid-window instant should be active")
	}
	if sub.ActiveAt(start.Add(-time.Second)) {
		t.Error("instant before start should be inactive")
	}
	if sub.ActiveAt(end.Add(time.Second)) {
		t.Error("instant after end should be inactive")
	}
}

func TestUserHasRole(t *testing.T) {
	u := User{Role: []string{RoleUser, RoleFarmer}}
	if !u.HasRole(RoleFarmer) {
		t.Error("expected farmer role")
	}
	if u.HasRole(RoleAdmin) {
		t.Error("did not expect admin role")
	}
}
