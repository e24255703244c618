package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"coral-embed-be/config"
	"coral-embed-be/models"
	"coral-embed-be/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// UserResponse is a user without credentials
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Banned    bool        `json:"banned"`
	CreatedAt time.Time   `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Banned:    u.Banned,
		CreatedAt: u.CreatedAt,
	}
}

type UpdateUserRequest struct {
	Name     *string      `json:"name"`
	Username *string      `json:"username"`
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	Role     *models.Role `json:"role"`
}

type BanUserRequest struct {
	Banned bool `json:"banned"`
}

// GetCurrentUser retrieves current authenticated user info
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := viewer(r)
	if claims == nil {
		utils.RespondUnauthorized(w, "Unauthorized")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.WithContext(r.Context()).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		utils.RespondNotFound(w, "User")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, toUserResponse(&user), nil)
}

// GetUsers lists users with pagination (admin only). ?role= filters by role.
func GetUsers(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)
	db := config.GetDB().WithContext(r.Context())

	query := db.Model(&models.User{})
	if role := models.Role(r.URL.Query().Get("role")); role != "" {
		if role.Rank() == 0 {
			utils.RespondBadRequest(w, "Unknown role")
			return
		}
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i])
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
		"users": resp,
	}, page.Meta(total))
}

// GetUser retrieves a single user by ID
func GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	db := config.GetDB()
	var user models.User
	if err := db.WithContext(r.Context()).First(&user, "id = ?", id).Error; err != nil {
		utils.RespondNotFound(w, "User")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, toUserResponse(&user), nil)
}

// UpdateUser updates a user (admin can update any, user can update self)
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	claims := viewer(r)
	if claims == nil {
		utils.RespondUnauthorized(w, "Unauthorized")
		return
	}
	isAdmin := models.Role(claims.Role) == models.RoleAdmin
	if !isAdmin && claims.UserID != id {
		utils.RespondForbidden(w, "You don't have permission to update this user")
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updates := make(map[string]interface{})
	fields := make(map[string]string)
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			fields["name"] = "Name cannot be empty"
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Username != nil {
		if strings.TrimSpace(*req.Username) == "" {
			fields["username"] = "Username cannot be empty"
		}
		updates["username"] = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		if !strings.Contains(*req.Email, "@") {
			fields["email"] = "Email is invalid"
		}
		updates["email"] = strings.ToLower(*req.Email)
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			fields["password"] = "Password must be at least 8 characters"
		} else {
			hashed, err := utils.HashPassword(*req.Password)
			if err != nil {
				utils.RespondInternalError(w)
				return
			}
			updates["password"] = hashed
		}
	}
	// Only admins change roles
	if req.Role != nil && isAdmin {
		if req.Role.Rank() == 0 {
			fields["role"] = "Role must be admin, moderator or commenter"
		}
		updates["role"] = *req.Role
	}
	if len(fields) > 0 {
		utils.RespondValidationError(w, fields)
		return
	}

	db := config.GetDB().WithContext(r.Context())
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		utils.RespondNotFound(w, "User")
		return
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				utils.RespondConflict(w, "USER_EXISTS", "Email or username already registered")
				return
			}
			utils.RespondInternalError(w)
			return
		}
	}

	utils.RespondSuccess(w, http.StatusOK, toUserResponse(&user), nil)
}

// DeleteUser soft deletes a user (admin only)
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if c := viewer(r); c != nil && c.UserID == id {
		utils.RespondBadRequest(w, "You cannot delete your own account")
		return
	}

	db := config.GetDB()
	result := db.WithContext(r.Context()).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		utils.RespondInternalError(w)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondNotFound(w, "User")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	}, nil)
}

// canBan reports whether the viewer may change the ban flag of target
func canBan(viewer *utils.Claims, target *models.User) bool {
	if viewer == nil || viewer.UserID == target.ID {
		return false
	}
	return models.Role(viewer.Role).Rank() > target.Role.Rank() ||
		models.Role(viewer.Role) == models.RoleAdmin
}

// BanUser sets or clears the site ban of a user (moderators and admins)
func BanUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	var req BanUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	db := config.GetDB().WithContext(ctx)
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		utils.RespondNotFound(w, "User")
		return
	}

	claims := viewer(r)
	if !canBan(claims, &user) {
		utils.RespondForbidden(w, "You cannot ban this user")
		return
	}

	if err := db.Model(&user).Update("banned", req.Banned).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	slog.InfoContext(ctx, "user ban changed", "user_id", user.ID, "banned", req.Banned, "by", claims.UserID)
	utils.RespondSuccess(w, http.StatusOK, toUserResponse(&user), nil)
}
