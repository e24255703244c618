package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"coral-embed-be/config"
	"coral-embed-be/embed"
	"coral-embed-be/middleware"
	"coral-embed-be/models"
	"coral-embed-be/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// ModerateRequest pins a moderation decision to the revision the
// moderator looked at
type ModerateRequest struct {
	RevisionID string `json:"revision_id"`
}

// ModerationActions is what the moderation menu of a comment offers
type ModerationActions struct {
	CommentID       string  `json:"comment_id"`
	RevisionID      string  `json:"revision_id"`
	Approved        bool    `json:"approved"`
	Rejected        bool    `json:"rejected"`
	Featured        bool    `json:"featured"`
	CanFeature      bool    `json:"can_feature"`
	ShowBanOption   bool    `json:"show_ban_option"`
	ModerateComment string  `json:"moderate_comment_link"`
	ModerateStory   string  `json:"moderate_story_link"`
	EmbedCode       *string `json:"embed_code,omitempty"`
}

// EmbedResponse carries the embed snippet of a comment
type EmbedResponse struct {
	CommentID string `json:"comment_id"`
	EmbedCode string `json:"embed_code"`
}

var errRevisionMismatch = errors.New("comment revision changed")

// moderationLink builds an admin link, carrying the access token in the
// fragment when single sign-on targets the admin
func moderationLink(path string, settings *models.Settings, accessToken string) string {
	if settings.SSOEnabled && settings.SSOTargetAdmin && accessToken != "" {
		return path + "#accessToken=" + url.QueryEscape(accessToken)
	}
	return path
}

// showBanOption reports whether the viewer may be offered to ban the author
func showBanOption(c *models.Comment, viewerID string) bool {
	if c.AuthorID == nil || *c.AuthorID == "" || viewerID == "" {
		return false
	}
	return *c.AuthorID != viewerID
}

// buildEmbedCode runs the embed pipeline on a stored comment
func buildEmbedCode(t *embed.Transformer, c *models.Comment, settings *models.Settings) (string, error) {
	return embed.Build(t, embed.Comment{
		ID:         c.ID,
		AuthorName: c.AuthorUsername(),
		Body:       c.Body,
	}, embed.Settings{
		AllowReplies:  settings.EmbedAllowReplies,
		ReactionLabel: settings.ReactionLabel,
	})
}

// buildModerationActions computes the moderation menu of c as seen by the
// viewer. The embed code is left out when the comment has no body.
func buildModerationActions(t *embed.Transformer, c *models.Comment, story *models.Story,
	settings *models.Settings, viewerID, accessToken string) (*ModerationActions, error) {
	actions := &ModerationActions{
		CommentID:       c.ID,
		RevisionID:      c.RevisionID,
		Approved:        c.Status == models.CommentStatusApproved,
		Rejected:        c.Status == models.CommentStatusRejected,
		Featured:        c.HasTag(models.TagFeatured),
		CanFeature:      story.Mode != models.StoryModeQA,
		ShowBanOption:   showBanOption(c, viewerID),
		ModerateComment: moderationLink("/admin/moderate/comment/"+c.ID, settings, accessToken),
		ModerateStory:   moderationLink("/admin/moderate/stories/"+story.ID, settings, accessToken),
	}

	code, err := buildEmbedCode(t, c, settings)
	switch {
	case errors.Is(err, embed.ErrEmptyBody):
		// nothing to embed
	case err != nil:
		return nil, err
	default:
		actions.EmbedCode = &code
	}
	return actions, nil
}

// accessTokenOf returns the bearer token the request was authenticated with
func accessTokenOf(r *http.Request) string {
	token, err := middleware.BearerToken(r)
	if err != nil {
		return ""
	}
	return token
}

// respondEmbedError maps a failed embed build of a comment to a response
func respondEmbedError(w http.ResponseWriter, r *http.Request, commentID string, err error) {
	ctx := r.Context()
	var pe *embed.ParseError
	switch {
	case errors.Is(err, embed.ErrEmptyBody):
		utils.RespondError(w, http.StatusUnprocessableEntity, "EMPTY_BODY", "Comment has no body to embed", nil)
	case errors.As(err, &pe):
		slog.WarnContext(ctx, "embed body not parsed", "comment_id", commentID, "err", err)
		utils.RespondError(w, http.StatusUnprocessableEntity, "UNPARSEABLE_BODY", "Comment body could not be processed", nil)
	default:
		slog.ErrorContext(ctx, "embed build failed", "comment_id", commentID, "err", err)
		utils.RespondInternalError(w)
	}
}

// GetModerationActions returns the moderation menu of a comment (moderators)
func GetModerationActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment, err := findComment(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.RespondNotFound(w, "Comment")
		return
	}

	story, err := findStory(ctx, "id", comment.StoryID)
	if err != nil {
		utils.RespondNotFound(w, "Story")
		return
	}

	settings, err := loadSettings(ctx)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}

	var viewerID string
	if claims := viewer(r); claims != nil {
		viewerID = claims.UserID
	}

	actions, err := buildModerationActions(config.GetTransformer(), comment, story, settings, viewerID, accessTokenOf(r))
	if err != nil {
		respondEmbedError(w, r, comment.ID, err)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, actions, nil)
}

// GetCommentEmbed returns the embed snippet of a comment. Comments without
// a body have no embed.
func GetCommentEmbed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment, err := findComment(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.RespondNotFound(w, "Comment")
		return
	}

	settings, err := loadSettings(ctx)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}

	cacheKey := utils.EmbedCacheKey(comment.ID, comment.UpdatedAt, settings.UpdatedAt)
	var cached EmbedResponse
	if err := utils.CacheGet(ctx, cacheKey, &cached); err == nil {
		utils.RespondSuccess(w, http.StatusOK, cached, nil)
		return
	}

	code, err := buildEmbedCode(config.GetTransformer(), comment, settings)
	if err != nil {
		respondEmbedError(w, r, comment.ID, err)
		return
	}

	slog.DebugContext(ctx, "embed code built", "comment_id", comment.ID,
		"body_bytes", len(comment.Body), "embed_bytes", len(code))

	resp := EmbedResponse{CommentID: comment.ID, EmbedCode: code}
	_ = utils.CacheSet(ctx, cacheKey, resp, utils.CacheTTLEmbedCode)

	utils.RespondSuccess(w, http.StatusOK, resp, nil)
}

// checkRevision accepts an empty revision id, which means "whatever is current"
func checkRevision(c *models.Comment, revisionID string) error {
	if revisionID != "" && revisionID != c.RevisionID {
		return errRevisionMismatch
	}
	return nil
}

// setStatus moves a comment to status. Rejecting also drops the featured tag.
func setStatus(ctx context.Context, c *models.Comment, status models.CommentStatus) error {
	return config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(c).Update("status", status).Error; err != nil {
			return err
		}
		if status == models.CommentStatusRejected {
			return tx.Where("comment_id = ? AND code = ?", c.ID, models.TagFeatured).
				Delete(&models.CommentTag{}).Error
		}
		return nil
	})
}

func moderate(w http.ResponseWriter, r *http.Request, status models.CommentStatus) {
	ctx := r.Context()

	var req ModerateRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	comment, err := findComment(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.RespondNotFound(w, "Comment")
		return
	}
	if err := checkRevision(comment, req.RevisionID); err != nil {
		utils.RespondConflict(w, "REVISION_MISMATCH", "Comment was edited since it was loaded")
		return
	}

	if err := setStatus(ctx, comment, status); err != nil {
		utils.RespondInternalError(w)
		return
	}

	invalidateComment(ctx, comment)
	slog.InfoContext(ctx, "comment moderated", "comment_id", comment.ID, "status", status, "by", moderatorID(r))

	updated, err := findComment(ctx, comment.ID)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, toCommentResponse(updated), nil)
}

func moderatorID(r *http.Request) string {
	if c := viewer(r); c != nil {
		return c.UserID
	}
	return ""
}

func invalidateComment(ctx context.Context, c *models.Comment) {
	_ = utils.CacheDeletePattern(ctx, commentListPattern(c.StoryID))
}

// ApproveComment approves a comment (moderators)
func ApproveComment(w http.ResponseWriter, r *http.Request) {
	moderate(w, r, models.CommentStatusApproved)
}

// RejectComment rejects a comment (moderators)
func RejectComment(w http.ResponseWriter, r *http.Request) {
	moderate(w, r, models.CommentStatusRejected)
}

// FeatureComment tags a comment as featured and approves it (moderators).
// Q&A stories have no featured comments.
func FeatureComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment, err := findComment(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.RespondNotFound(w, "Comment")
		return
	}

	story, err := findStory(ctx, "id", comment.StoryID)
	if err != nil {
		utils.RespondNotFound(w, "Story")
		return
	}
	if story.Mode == models.StoryModeQA {
		utils.RespondConflict(w, "FEATURE_DISABLED", "Comments cannot be featured in Q&A mode")
		return
	}

	if !comment.HasTag(models.TagFeatured) {
		err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			tag := models.CommentTag{CommentID: comment.ID, Code: models.TagFeatured}
			if err := tx.Create(&tag).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			return tx.Model(comment).Update("status", models.CommentStatusApproved).Error
		})
		if err != nil {
			utils.RespondInternalError(w)
			return
		}
		invalidateComment(ctx, comment)
	}

	updated, err := findComment(ctx, comment.ID)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, toCommentResponse(updated), nil)
}

// UnfeatureComment removes the featured tag (moderators)
func UnfeatureComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment, err := findComment(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.RespondNotFound(w, "Comment")
		return
	}

	if comment.HasTag(models.TagFeatured) {
		err := config.GetDB().WithContext(ctx).
			Where("comment_id = ? AND code = ?", comment.ID, models.TagFeatured).
			Delete(&models.CommentTag{}).Error
		if err != nil {
			utils.RespondInternalError(w)
			return
		}
		invalidateComment(ctx, comment)
	}

	updated, err := findComment(ctx, comment.ID)
	if err != nil {
		utils.RespondInternalError(w)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, toCommentResponse(updated), nil)
}
