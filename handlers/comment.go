package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"coral-embed-be/config"
	"coral-embed-be/models"
	"coral-embed-be/utils"

	"github.com/gorilla/mux"
)

// CommentResponse is a comment as the stream and moderation queue show it
type CommentResponse struct {
	ID         string               `json:"id"`
	StoryID    string               `json:"story_id"`
	ParentID   *string              `json:"parent_id,omitempty"`
	Body       string               `json:"body"`
	RevisionID string               `json:"revision_id"`
	Status     models.CommentStatus `json:"status"`
	Author     *SimplifiedAuthor    `json:"author"`
	Tags       []string             `json:"tags"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func toCommentResponse(c *models.Comment) CommentResponse {
	tags := make([]string, len(c.Tags))
	for i, t := range c.Tags {
		tags[i] = t.Code
	}
	return CommentResponse{
		ID:         c.ID,
		StoryID:    c.StoryID,
		ParentID:   c.ParentID,
		Body:       c.Body,
		RevisionID: c.RevisionID,
		Status:     c.Status,
		Author:     authorOf(c.Author),
		Tags:       tags,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type CreateCommentRequest struct {
	StoryID  string  `json:"story_id"`
	ParentID *string `json:"parent_id"`
	Body     string  `json:"body"`
}

func commentListPattern(storyID string) string {
	return utils.BuildCacheKey("comments", "story", storyID, "*")
}

// cleanCommentBody sanitizes a submitted body and checks it against the
// length limit. A maxLength of zero means no limit.
func cleanCommentBody(body string, maxLength int) (string, map[string]string) {
	clean := strings.TrimSpace(utils.SanitizeHTML(body))
	text := utils.MakeExcerpt(clean, utf8.RuneCountInString(clean))

	fields := make(map[string]string)
	switch {
	case text == "":
		fields["body"] = "Comment body is required"
	case maxLength > 0 && utf8.RuneCountInString(text) > maxLength:
		fields["body"] = "Comment body is too long"
	}
	return clean, fields
}

// initialStatus is the status a new comment starts with
func initialStatus(story *models.Story) models.CommentStatus {
	if story.Premod {
		return models.CommentStatusPremod
	}
	return models.CommentStatusNone
}

// GetStoryComments lists the comments of a story. Readers see published
// comments only; moderators see all and may filter by ?status=.
// ?live=true returns oldest first for the live chat tab.
func GetStoryComments(w http.ResponseWriter, r *http.Request) {
	storyID := mux.Vars(r)["id"]
	ctx := r.Context()
	page := utils.ParsePage(r)
	moderator := isModerator(viewer(r))
	live := r.URL.Query().Get("live") == "true"

	status := models.CommentStatus(r.URL.Query().Get("status"))
	if status != "" && !moderator {
		utils.RespondForbidden(w, "Only moderators can filter by status")
		return
	}

	cacheKey := utils.BuildCacheKey("comments", "story", storyID, "page", page.Page,
		"limit", page.Limit, "all", moderator, "status", status, "live", live)
	type cachedComments struct {
		Comments []CommentResponse `json:"comments"`
		Meta     *utils.Meta       `json:"meta"`
	}
	var cached cachedComments
	if err := utils.CacheGet(ctx, cacheKey, &cached); err == nil {
		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
			"comments": cached.Comments,
		}, cached.Meta)
		return
	}

	if _, err := findStory(ctx, "id", storyID); err != nil {
		utils.RespondNotFound(w, "Story")
		return
	}

	db := config.GetDB().WithContext(ctx)
	query := db.Model(&models.Comment{}).Where("story_id = ?", storyID)
	switch {
	case status != "":
		query = query.Where("status = ?", status)
	case !moderator:
		query = query.Where("status IN ?", []models.CommentStatus{models.CommentStatusNone, models.CommentStatusApproved})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	order := "created_at DESC"
	if live {
		order = "created_at ASC"
	}

	var comments []models.Comment
	if err := query.Preload("Author").Preload("Tags").Order(order).
		Limit(page.Limit).Offset(page.Offset()).Find(&comments).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = toCommentResponse(&comments[i])
	}
	meta := page.Meta(total)

	_ = utils.CacheSet(ctx, cacheKey, cachedComments{Comments: resp, Meta: meta}, utils.CacheTTLCommentList)

	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
		"comments": resp,
	}, meta)
}

func findComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := config.GetDB().WithContext(ctx).Preload("Author").Preload("Tags").
		Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetComment retrieves a single comment. Unpublished comments are only
// visible to moderators and their author.
func GetComment(w http.ResponseWriter, r *http.Request) {
	comment, err := findComment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondNotFound(w, "Comment")
		return
	}

	claims := viewer(r)
	if !comment.Status.Visible() && !isModerator(claims) &&
		(claims == nil || comment.AuthorID == nil || *comment.AuthorID != claims.UserID) {
		utils.RespondNotFound(w, "Comment")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, toCommentResponse(comment), nil)
}

// CreateComment posts a comment or reply to an open stream. The live chat
// form posts here too.
func CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := viewer(r)
	if claims == nil {
		utils.RespondUnauthorized(w, "Unauthorized")
		return
	}

	var req CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.StoryID == "" {
		utils.RespondValidationError(w, map[string]string{"story_id": "Story is required"})
		return
	}

	settings, err := loadSettings(ctx)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}

	body, fields := cleanCommentBody(req.Body, settings.CommentMaxLength)
	if len(fields) > 0 {
		utils.RespondValidationError(w, fields)
		return
	}

	story, err := findStory(ctx, "id", req.StoryID)
	if err != nil {
		utils.RespondNotFound(w, "Story")
		return
	}
	if story.Closed {
		utils.RespondConflict(w, "STORY_CLOSED", "Commenting is closed on this story")
		return
	}

	db := config.GetDB().WithContext(ctx)
	if req.ParentID != nil {
		var parent models.Comment
		if err := db.Where("id = ? AND story_id = ?", *req.ParentID, story.ID).First(&parent).Error; err != nil {
			utils.RespondValidationError(w, map[string]string{"parent_id": "Parent comment not found on this story"})
			return
		}
	}

	authorID := claims.UserID
	comment := models.Comment{
		StoryID:  story.ID,
		AuthorID: &authorID,
		ParentID: req.ParentID,
		Body:     body,
		Status:   initialStatus(story),
	}
	if err := db.Create(&comment).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	_ = utils.CacheDeletePattern(ctx, commentListPattern(story.ID))
	slog.DebugContext(ctx, "comment created", "comment_id", comment.ID, "story_id", story.ID, "status", comment.Status)

	created, err := findComment(ctx, comment.ID)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, toCommentResponse(created), nil)
}
