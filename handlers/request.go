package handlers

import (
	"encoding/json"
	"net/http"

	"coral-embed-be/middleware"
	"coral-embed-be/models"
	"coral-embed-be/utils"
)

// maxRequestBody caps JSON request bodies
const maxRequestBody = 1 << 20

// SimplifiedAuthor for response
type SimplifiedAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func authorOf(u *models.User) *SimplifiedAuthor {
	if u == nil {
		return nil
	}
	return &SimplifiedAuthor{ID: u.ID, Username: u.Username}
}

// decodeJSON reads the request body into v, responding 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.RespondBadRequest(w, "Invalid request payload")
		return false
	}
	return true
}

// viewer returns the claims of the authenticated caller, nil for anonymous requests
func viewer(r *http.Request) *utils.Claims {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}
	return claims
}

func isModerator(c *utils.Claims) bool {
	return c != nil && models.Role(c.Role).Rank() >= models.RoleModerator.Rank()
}
