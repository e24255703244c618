package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"coral-embed-be/middleware"
	"coral-embed-be/models"
	"coral-embed-be/utils"
)

func request(method, target, body string, claims *utils.Claims) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	return req
}

func TestValidateRegister(t *testing.T) {
	fields := validateRegister(&RegisterRequest{Email: "nope", Password: "short", Role: "guest"})
	for _, k := range []string{"name", "username", "email", "password", "role"} {
		if fields[k] == "" {
			t.Errorf("expected an error for %s", k)
		}
	}

	ok := validateRegister(&RegisterRequest{
		Name: "Ann", Username: "ann", Email: "ann@example.com", Password: "long enough",
	})
	if len(ok) != 0 {
		t.Errorf("unexpected errors %v", ok)
	}
}

func TestRegisterRejectsBadPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	Register(rec, request("POST", "/api/users", "{", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	Register(rec, request("POST", "/api/users", `{"email":"x"}`, nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCanBan(t *testing.T) {
	commenter := &models.User{ID: "c", Role: models.RoleCommenter}
	moderator := &models.User{ID: "m", Role: models.RoleModerator}
	admin := &models.User{ID: "a", Role: models.RoleAdmin}

	tests := []struct {
		name   string
		viewer *utils.Claims
		target *models.User
		want   bool
	}{
		{"moderator bans commenter", &utils.Claims{UserID: "m", Role: "moderator"}, commenter, true},
		{"moderator cannot ban moderator", &utils.Claims{UserID: "m2", Role: "moderator"}, moderator, false},
		{"moderator cannot ban admin", &utils.Claims{UserID: "m", Role: "moderator"}, admin, false},
		{"admin bans moderator", &utils.Claims{UserID: "a", Role: "admin"}, moderator, true},
		{"nobody bans themselves", &utils.Claims{UserID: "a", Role: "admin"}, admin, false},
		{"anonymous", nil, commenter, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canBan(tt.viewer, tt.target); got != tt.want {
				t.Errorf("canBan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyStoryConfig(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	story := &models.Story{Mode: models.StoryModeComments}
	closed, qa := true, models.StoryModeQA

	if fields := applyStoryConfig(story, &UpdateStoryConfigRequest{Closed: &closed, Mode: &qa}, now); len(fields) != 0 {
		t.Fatalf("unexpected errors %v", fields)
	}
	if !story.Closed || story.ClosedAt == nil || !story.ClosedAt.Equal(now) || story.Mode != models.StoryModeQA {
		t.Errorf("story not closed in Q&A mode: %+v", story)
	}

	open := false
	applyStoryConfig(story, &UpdateStoryConfigRequest{Closed: &open}, now.Add(time.Hour))
	if story.Closed || story.ClosedAt != nil {
		t.Errorf("story not reopened: %+v", story)
	}

	bad := models.StoryMode("CHAT")
	if fields := applyStoryConfig(story, &UpdateStoryConfigRequest{Mode: &bad}, now); fields["mode"] == "" {
		t.Error("expected a mode error")
	}
}

func TestValidateStoryURL(t *testing.T) {
	for in, want := range map[string]bool{
		"https://news.example.com/a": true,
		"http://example.com":         true,
		"/relative":                  false,
		"javascript:alert(1)":        false,
		"":                           false,
	} {
		if got := validateStoryURL(in); got != want {
			t.Errorf("validateStoryURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCleanCommentBody(t *testing.T) {
	body, fields := cleanCommentBody(`<p>hi<script>x</script> <span class="spoiler">s</span></p>`, 0)
	if len(fields) != 0 {
		t.Fatalf("unexpected errors %v", fields)
	}
	if strings.Contains(body, "script") || !strings.Contains(body, `class="spoiler"`) {
		t.Errorf("body = %q", body)
	}

	for _, in := range []string{"", "   ", "<p></p>", "<script>only</script>"} {
		if _, fields := cleanCommentBody(in, 0); fields["body"] == "" {
			t.Errorf("cleanCommentBody(%q) should be rejected as empty", in)
		}
	}

	if _, fields := cleanCommentBody("<b>abcdef</b>", 5); fields["body"] == "" {
		t.Error("expected a length error")
	}
	if _, fields := cleanCommentBody("<b>abcde</b>", 5); len(fields) != 0 {
		t.Errorf("markup should not count toward the limit: %v", fields)
	}
}

func TestInitialStatus(t *testing.T) {
	if initialStatus(&models.Story{Premod: true}) != models.CommentStatusPremod {
		t.Error("premod story should hold new comments")
	}
	if initialStatus(&models.Story{}) != models.CommentStatusNone {
		t.Error("open story should publish new comments")
	}
}

func TestCreateCommentRequiresViewer(t *testing.T) {
	rec := httptest.NewRecorder()
	CreateComment(rec, request("POST", "/api/comments", `{"story_id":"s1","body":"hi"}`, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGetStoryCommentsStatusFilterNeedsModerator(t *testing.T) {
	rec := httptest.NewRecorder()
	claims := &utils.Claims{UserID: "c", Role: string(models.RoleCommenter)}
	GetStoryComments(rec, request("GET", "/api/stories/s1/comments?status=REJECTED", "", claims))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestReportStatusFilter(t *testing.T) {
	tests := []struct {
		in   string
		want []models.DSAReportStatus
		ok   bool
	}{
		{"", nil, true},
		{"open", models.OpenDSAReportStatuses, true},
		{"closed", []models.DSAReportStatus{models.DSAReportCompleted, models.DSAReportVoid}, true},
		{"void", []models.DSAReportStatus{models.DSAReportVoid}, true},
		{"lost", nil, false},
	}
	for _, tt := range tests {
		got, ok := reportStatusFilter(tt.in)
		if ok != tt.ok || len(got) != len(tt.want) {
			t.Errorf("reportStatusFilter(%q) = %v %v", tt.in, got, ok)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("reportStatusFilter(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestGetReportsRejectsUnknownStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	GetReports(rec, request("GET", "/api/reports?status=lost", "", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestToReportRow(t *testing.T) {
	rep := &models.DSAReport{
		ID:                   "r1",
		ReferenceID:          "ref",
		Status:               models.DSAReportUnderReview,
		LawBrokenDescription: "defamation",
		Reporter:             &models.User{Username: "rep"},
		Comment: &models.Comment{
			Body:   "<p>" + strings.Repeat("word ", 40) + "</p>",
			Author: &models.User{Username: "ann"},
		},
	}

	row := toReportRow(rep)
	if !row.Open || row.ReporterUsername != "rep" || row.CommentAuthorUsername != "ann" {
		t.Errorf("unexpected row %+v", row)
	}
	if !strings.HasSuffix(row.CommentExcerpt, "...") || strings.Contains(row.CommentExcerpt, "<p>") {
		t.Errorf("excerpt = %q", row.CommentExcerpt)
	}

	bare := toReportRow(&models.DSAReport{Status: models.DSAReportVoid})
	if bare.Open || bare.ReporterUsername != "" || bare.CommentExcerpt != "" {
		t.Errorf("report without relations = %+v", bare)
	}
}

func TestSettingsUpdates(t *testing.T) {
	no := false
	label := " Like "
	updates, fields := settingsUpdates(&UpdateSettingsRequest{EmbedAllowReplies: &no, ReactionLabel: &label})
	if len(fields) != 0 {
		t.Fatalf("unexpected errors %v", fields)
	}
	if updates["embed_allow_replies"] != false || updates["reaction_label"] != "Like" {
		t.Errorf("updates = %v", updates)
	}

	empty := "  "
	negative := -1
	_, fields = settingsUpdates(&UpdateSettingsRequest{ReactionLabel: &empty, CommentMaxLength: &negative})
	if fields["reaction_label"] == "" || fields["comment_max_length"] == "" {
		t.Errorf("expected validation errors, got %v", fields)
	}
}

func TestUpdateSettingsValidatesBeforeSaving(t *testing.T) {
	rec := httptest.NewRecorder()
	UpdateSettings(rec, request("PUT", "/api/settings", `{"reaction_label":""}`, nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
