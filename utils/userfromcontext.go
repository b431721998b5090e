package utils

import (
	"net/http"

	"mandi/globals"
)

func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetRolesFromRequest(r *http.Request) []string {
	roles, ok := r.Context().Value(globals.RolesKey).([]string)
	if !ok {
		return nil
	}
	return roles
}

func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
