package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"coral-embed-be/config"
	"coral-embed-be/models"
	"coral-embed-be/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const reportListPattern = "reports:list:*"

// ReportRow is one line of the DSA reports table
type ReportRow struct {
	ID                    string                 `json:"id"`
	ReferenceID           string                 `json:"reference_id"`
	Status                models.DSAReportStatus `json:"status"`
	Open                  bool                   `json:"open"`
	CreatedAt             time.Time              `json:"created_at"`
	LastUpdated           *time.Time             `json:"last_updated"`
	ReporterUsername      string                 `json:"reporter_username"`
	LawBrokenDescription  string                 `json:"law_broken_description"`
	CommentID             *string                `json:"comment_id"`
	CommentAuthorUsername string                 `json:"comment_author_username"`
	CommentExcerpt        string                 `json:"comment_excerpt"`
}

// ReportDetail is a report with its full texts
type ReportDetail struct {
	ReportRow
	AdditionalInfo string           `json:"additional_info"`
	Comment        *CommentResponse `json:"comment,omitempty"`
}

type CreateReportRequest struct {
	CommentID            string `json:"comment_id"`
	LawBrokenDescription string `json:"law_broken_description"`
	AdditionalInfo       string `json:"additional_info"`
}

type UpdateReportStatusRequest struct {
	Status models.DSAReportStatus `json:"status"`
}

func toReportRow(rep *models.DSAReport) ReportRow {
	row := ReportRow{
		ID:                   rep.ID,
		ReferenceID:          rep.ReferenceID,
		Status:               rep.Status,
		Open:                 rep.Status.Open(),
		CreatedAt:            rep.CreatedAt,
		LastUpdated:          rep.LastUpdated,
		LawBrokenDescription: rep.LawBrokenDescription,
		CommentID:            rep.CommentID,
	}
	if rep.Reporter != nil {
		row.ReporterUsername = rep.Reporter.Username
	}
	if rep.Comment != nil {
		row.CommentAuthorUsername = rep.Comment.AuthorUsername()
		row.CommentExcerpt = utils.MakeExcerpt(rep.Comment.Body, utils.CommentExcerptLength)
	}
	return row
}

// reportStatusFilter maps ?status= onto the statuses it selects. "open"
// and "closed" group statuses; any single status selects itself.
func reportStatusFilter(v string) ([]models.DSAReportStatus, bool) {
	switch v {
	case "":
		return nil, true
	case "open":
		return models.OpenDSAReportStatuses, true
	case "closed":
		return []models.DSAReportStatus{models.DSAReportCompleted, models.DSAReportVoid}, true
	}
	s := models.DSAReportStatus(strings.ToUpper(v))
	if !s.Valid() {
		return nil, false
	}
	return []models.DSAReportStatus{s}, true
}

// GetReports lists DSA reports, newest first (admin only)
func GetReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := utils.ParsePage(r)
	statusParam := r.URL.Query().Get("status")

	statuses, ok := reportStatusFilter(statusParam)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be open, closed or a report status", nil)
		return
	}

	cacheKey := utils.BuildCacheKey("reports", "list", statusParam, "page", page.Page, "limit", page.Limit)
	type cachedReports struct {
		Reports []ReportRow `json:"reports"`
		Meta    *utils.Meta `json:"meta"`
	}
	var cached cachedReports
	if err := utils.CacheGet(ctx, cacheKey, &cached); err == nil {
		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
			"reports": cached.Reports,
		}, cached.Meta)
		return
	}

	db := config.GetDB().WithContext(ctx)
	query := db.Model(&models.DSAReport{})
	if statuses != nil {
		query = query.Where("status IN ?", statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	var reports []models.DSAReport
	err := query.Preload("Reporter").Preload("Comment").Preload("Comment.Author").
		Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&reports).Error
	if err != nil {
		utils.RespondInternalError(w)
		return
	}

	rows := make([]ReportRow, len(reports))
	for i := range reports {
		rows[i] = toReportRow(&reports[i])
	}
	meta := page.Meta(total)

	_ = utils.CacheSet(ctx, cacheKey, cachedReports{Reports: rows, Meta: meta}, utils.CacheTTLReportsList)

	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
		"reports": rows,
	}, meta)
}

func findReport(ctx context.Context, id string) (*models.DSAReport, error) {
	var report models.DSAReport
	err := config.GetDB().WithContext(ctx).
		Preload("Reporter").Preload("Comment").Preload("Comment.Author").Preload("Comment.Tags").
		Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func toReportDetail(rep *models.DSAReport) ReportDetail {
	detail := ReportDetail{
		ReportRow:      toReportRow(rep),
		AdditionalInfo: rep.AdditionalInfo,
	}
	if rep.Comment != nil {
		c := toCommentResponse(rep.Comment)
		detail.Comment = &c
	}
	return detail
}

// GetReport retrieves a single report (admin only)
func GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := findReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondNotFound(w, "Report")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, toReportDetail(report), nil)
}

// CreateReport files an illegal content report against a comment
func CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := viewer(r)
	if claims == nil {
		utils.RespondUnauthorized(w, "Unauthorized")
		return
	}

	var req CreateReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	if req.CommentID == "" {
		fields["comment_id"] = "Comment is required"
	}
	if strings.TrimSpace(req.LawBrokenDescription) == "" {
		fields["law_broken_description"] = "Law broken description is required"
	}
	if len(fields) > 0 {
		utils.RespondValidationError(w, fields)
		return
	}

	db := config.GetDB().WithContext(ctx)
	var comment models.Comment
	if err := db.Select("id").Where("id = ?", req.CommentID).First(&comment).Error; err != nil {
		utils.RespondNotFound(w, "Comment")
		return
	}

	reporterID := claims.UserID
	report := models.DSAReport{
		ReferenceID:          uuid.NewString(),
		Status:               models.DSAReportAwaitingReview,
		ReporterID:           &reporterID,
		CommentID:            &comment.ID,
		LawBrokenDescription: strings.TrimSpace(req.LawBrokenDescription),
		AdditionalInfo:       strings.TrimSpace(req.AdditionalInfo),
	}
	if err := db.Create(&report).Error; err != nil {
		utils.RespondInternalError(w)
		return
	}

	_ = utils.CacheDeletePattern(ctx, reportListPattern)

	utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{
		"id":           report.ID,
		"reference_id": report.ReferenceID,
		"status":       report.Status,
	}, nil)
}

// UpdateReportStatus moves a report through review (admin only)
func UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateReportStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		utils.RespondValidationError(w, map[string]string{"status": "Unknown report status"})
		return
	}

	report, err := findReport(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.RespondNotFound(w, "Report")
		return
	}

	now := time.Now()
	err = config.GetDB().WithContext(ctx).Model(&models.DSAReport{}).Where("id = ?", report.ID).
		Updates(map[string]interface{}{"status": req.Status, "last_updated": now}).Error
	if err != nil {
		utils.RespondInternalError(w)
		return
	}
	report.Status = req.Status
	report.LastUpdated = &now

	_ = utils.CacheDeletePattern(ctx, reportListPattern)

	utils.RespondSuccess(w, http.StatusOK, toReportDetail(report), nil)
}
