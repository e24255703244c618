package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"coral-embed-be/config"
	"coral-embed-be/models"
	"coral-embed-be/utils"

	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginData struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"` // Unix timestamp
}

// validateRegister returns the field errors of a registration request
func validateRegister(req *RegisterRequest) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required"
	}
	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = "Username is required"
	}
	if req.Email == "" {
		fields["email"] = "Email is required"
	} else if !strings.Contains(req.Email, "@") {
		fields["email"] = "Email is invalid"
	}
	if len(req.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}
	if req.Role != "" && req.Role.Rank() == 0 {
		fields["role"] = "Role must be admin, moderator or commenter"
	}
	return fields
}

// Register creates a new user account (admin only)
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fields := validateRegister(&req); len(fields) > 0 {
		utils.RespondValidationError(w, fields)
		return
	}

	if req.Role == "" {
		req.Role = models.RoleCommenter
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(req.Email),
		Password: hashedPassword,
		Role:     req.Role,
	}

	db := config.GetDB()
	if err := db.WithContext(r.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondConflict(w, "USER_EXISTS", "Email or username already registered")
			return
		}
		utils.RespondInternalError(w)
		return
	}

	utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{
		"id":       user.ID,
		"name":     user.Name,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}, nil)
}

// Login authenticates a user and returns a JWT token
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		fields := make(map[string]string)
		if req.Email == "" {
			fields["email"] = "Email is required"
		}
		if req.Password == "" {
			fields["password"] = "Password is required"
		}
		utils.RespondValidationError(w, fields)
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.WithContext(r.Context()).Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		utils.RespondUnauthorized(w, "Invalid credentials")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.RespondUnauthorized(w, "Invalid credentials")
		return
	}
	if user.Banned {
		utils.RespondForbidden(w, "User is banned")
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), os.Getenv("JWT_SECRET"))
	if err != nil {
		utils.RespondInternalError(w)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, LoginData{
		UserID:    user.ID,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: time.Now().Add(utils.TokenTTL).Unix(),
	}, nil)
}
