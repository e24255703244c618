package handlers

import (
	"context"
	"net/http"
	"strings"

	"coral-embed-be/config"
	"coral-embed-be/models"
	"coral-embed-be/utils"
)

const settingsCacheKey = "settings"

type UpdateSettingsRequest struct {
	EmbedAllowReplies *bool   `json:"embedded_comments_allow_replies"`
	ReactionLabel     *string `json:"reaction_label"`
	ReactionIcon      *string `json:"reaction_icon"`
	SSOEnabled        *bool   `json:"sso_enabled"`
	SSOTargetAdmin    *bool   `json:"sso_target_admin"`
	LiveChatEnabled   *bool   `json:"live_chat_enabled"`
	CommentMaxLength  *int    `json:"comment_max_length"`
}

// loadSettings returns the settings row, creating it with defaults on first use
func loadSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := utils.CacheGet(ctx, settingsCacheKey, &settings); err == nil {
		return &settings, nil
	}

	db := config.GetDB().WithContext(ctx)
	if err := db.FirstOrCreate(&settings, models.Settings{ID: 1}).Error; err != nil {
		return nil, err
	}

	_ = utils.CacheSet(ctx, settingsCacheKey, settings, utils.CacheTTLSettings)
	return &settings, nil
}

// GetSettings returns the site settings (admin only)
func GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := loadSettings(r.Context())
	if err != nil {
		utils.RespondInternalError(w)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, settings, nil)
}

// settingsUpdates turns a request into column updates, collecting field errors
func settingsUpdates(req *UpdateSettingsRequest) (map[string]interface{}, map[string]string) {
	updates := make(map[string]interface{})
	fields := make(map[string]string)

	if req.EmbedAllowReplies != nil {
		updates["embed_allow_replies"] = *req.EmbedAllowReplies
	}
	if req.ReactionLabel != nil {
		label := strings.TrimSpace(*req.ReactionLabel)
		if label == "" {
			fields["reaction_label"] = "Reaction label cannot be empty"
		}
		updates["reaction_label"] = label
	}
	if req.ReactionIcon != nil {
		updates["reaction_icon"] = strings.TrimSpace(*req.ReactionIcon)
	}
	if req.SSOEnabled != nil {
		updates["sso_enabled"] = *req.SSOEnabled
	}
	if req.SSOTargetAdmin != nil {
		updates["sso_target_admin"] = *req.SSOTargetAdmin
	}
	if req.LiveChatEnabled != nil {
		updates["live_chat_enabled"] = *req.LiveChatEnabled
	}
	if req.CommentMaxLength != nil {
		if *req.CommentMaxLength < 0 {
			fields["comment_max_length"] = "Comment max length cannot be negative"
		}
		updates["comment_max_length"] = *req.CommentMaxLength
	}
	return updates, fields
}

// UpdateSettings changes the site settings (admin only)
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updates, fields := settingsUpdates(&req)
	if len(fields) > 0 {
		utils.RespondValidationError(w, fields)
		return
	}

	current, err := loadSettings(ctx)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}

	db := config.GetDB().WithContext(ctx)
	if len(updates) > 0 {
		if err := db.Model(&models.Settings{ID: current.ID}).Updates(updates).Error; err != nil {
			utils.RespondInternalError(w)
			return
		}
	}

	_ = utils.CacheDelete(ctx, settingsCacheKey)

	var settings models.Settings
	if err := db.First(&settings, current.ID).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, settings, nil)
}
