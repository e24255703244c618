package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coral-embed-be/config"
	"coral-embed-be/models"
	"coral-embed-be/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateStoryRequest struct {
	Title string           `json:"title"`
	URL   string           `json:"url"`
	Mode  models.StoryMode `json:"mode"`
}

// UpdateStoryConfigRequest carries the stream configuration pane
type UpdateStoryConfigRequest struct {
	Mode     *models.StoryMode `json:"mode"`
	Premod   *bool             `json:"premod"`
	LiveChat *bool             `json:"live_chat"`
	Closed   *bool             `json:"closed"`
}

func storyCacheKey(id string) string {
	return utils.BuildCacheKey("story", "id", id)
}

func validateStoryURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// applyStoryConfig copies the requested changes onto story. Closing a
// stream stamps ClosedAt; reopening clears it.
func applyStoryConfig(story *models.Story, req *UpdateStoryConfigRequest, now time.Time) map[string]string {
	fields := make(map[string]string)
	if req.Mode != nil {
		if !req.Mode.Valid() {
			fields["mode"] = "Mode must be COMMENTS, QA or RATINGS_AND_REVIEWS"
		} else {
			story.Mode = *req.Mode
		}
	}
	if req.Premod != nil {
		story.Premod = *req.Premod
	}
	if req.LiveChat != nil {
		story.LiveChat = *req.LiveChat
	}
	if req.Closed != nil && *req.Closed != story.Closed {
		story.Closed = *req.Closed
		if story.Closed {
			story.ClosedAt = &now
		} else {
			story.ClosedAt = nil
		}
	}
	return fields
}

// GetStories lists stories with pagination (moderators). ?closed=true|false filters.
func GetStories(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)
	db := config.GetDB().WithContext(r.Context())

	query := db.Model(&models.Story{})
	switch r.URL.Query().Get("closed") {
	case "":
	case "true":
		query = query.Where("closed = ?", true)
	case "false":
		query = query.Where("closed = ?", false)
	default:
		utils.RespondBadRequest(w, "closed must be true or false")
		return
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		query = query.Where("title ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	var stories []models.Story
	if err := query.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&stories).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
		"stories": stories,
	}, page.Meta(total))
}

func findStory(ctx context.Context, field, value string) (*models.Story, error) {
	var story models.Story
	if err := config.GetDB().WithContext(ctx).Where(field+" = ?", value).First(&story).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// GetStory retrieves a single story by ID
func GetStory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()
	cacheKey := storyCacheKey(id)

	var story models.Story
	if err := utils.CacheGet(ctx, cacheKey, &story); err == nil {
		utils.RespondSuccess(w, http.StatusOK, story, nil)
		return
	}

	found, err := findStory(ctx, "id", id)
	if err != nil {
		utils.RespondNotFound(w, "Story")
		return
	}

	_ = utils.CacheSet(ctx, cacheKey, found, utils.CacheTTLStoryDetail)
	utils.RespondSuccess(w, http.StatusOK, found, nil)
}

// GetStoryBySlug retrieves a single story by slug
func GetStoryBySlug(w http.ResponseWriter, r *http.Request) {
	story, err := findStory(r.Context(), "slug", mux.Vars(r)["slug"])
	if err != nil {
		utils.RespondNotFound(w, "Story")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, story, nil)
}

// CreateStory registers a story page comments can be attached to (moderators)
func CreateStory(w http.ResponseWriter, r *http.Request) {
	var req CreateStoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	fields := make(map[string]string)
	if req.Title == "" {
		fields["title"] = "Title is required"
	}
	if !validateStoryURL(req.URL) {
		fields["url"] = "URL must be an absolute http or https URL"
	}
	if req.Mode == "" {
		req.Mode = models.StoryModeComments
	} else if !req.Mode.Valid() {
		fields["mode"] = "Mode must be COMMENTS, QA or RATINGS_AND_REVIEWS"
	}
	if len(fields) > 0 {
		utils.RespondValidationError(w, fields)
		return
	}

	db := config.GetDB().WithContext(r.Context())
	slug := utils.UniqueSlug(utils.GenerateSlug(req.Title), func(s string) bool {
		var count int64
		db.Model(&models.Story{}).Where("slug = ?", s).Count(&count)
		return count > 0
	})

	story := models.Story{
		Title: req.Title,
		URL:   req.URL,
		Slug:  slug,
		Mode:  req.Mode,
	}
	if err := db.Create(&story).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondConflict(w, "STORY_EXISTS", "A story with this URL already exists")
			return
		}
		utils.RespondInternalError(w)
		return
	}

	utils.RespondSuccess(w, http.StatusCreated, story, nil)
}

// UpdateStoryConfig changes the stream configuration: mode, premod, live
// chat and open/closed state (moderators)
func UpdateStoryConfig(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	var req UpdateStoryConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	story, err := findStory(ctx, "id", id)
	if err != nil {
		utils.RespondNotFound(w, "Story")
		return
	}

	if fields := applyStoryConfig(story, &req, time.Now()); len(fields) > 0 {
		utils.RespondValidationError(w, fields)
		return
	}

	db := config.GetDB().WithContext(ctx)
	if err := db.Select("mode", "premod", "live_chat", "closed", "closed_at").Save(story).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	_ = utils.CacheDelete(ctx, storyCacheKey(id))
	_ = utils.CacheDeletePattern(ctx, commentListPattern(id))

	utils.RespondSuccess(w, http.StatusOK, story, nil)
}
