package models

import (
	"time"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleCommenter Role = "commenter"
)

// Rank orders roles by privilege
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	case RoleCommenter:
		return 1
	}
	return 0
}

type User struct {
	ID        string         `gorm:"primaryKey;type:varchar(25)" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      Role           `gorm:"type:varchar(20);default:'commenter'" json:"role"`
	Banned    bool           `gorm:"default:false" json:"banned"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate CUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = cuid.New()
	}
	return nil
}

type StoryMode string

const (
	StoryModeComments          StoryMode = "COMMENTS"
	StoryModeQA                StoryMode = "QA"
	StoryModeRatingsAndReviews StoryMode = "RATINGS_AND_REVIEWS"
)

func (m StoryMode) Valid() bool {
	switch m {
	case StoryModeComments, StoryModeQA, StoryModeRatingsAndReviews:
		return true
	}
	return false
}

type Story struct {
	ID        string         `gorm:"primaryKey;type:varchar(25)" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	URL       string         `gorm:"uniqueIndex;not null" json:"url"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Mode      StoryMode      `gorm:"type:varchar(32);default:'COMMENTS'" json:"mode"`
	Premod    bool           `gorm:"default:false" json:"premod"`
	LiveChat  bool           `gorm:"default:false" json:"live_chat"`
	Closed    bool           `gorm:"default:false" json:"closed"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate CUID
func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = cuid.New()
	}
	return nil
}

type CommentStatus string

const (
	CommentStatusNone     CommentStatus = "NONE"
	CommentStatusPremod   CommentStatus = "PREMOD"
	CommentStatusApproved CommentStatus = "APPROVED"
	CommentStatusRejected CommentStatus = "REJECTED"
)

// Visible reports whether comments with this status are shown to readers
func (s CommentStatus) Visible() bool {
	return s == CommentStatusNone || s == CommentStatusApproved
}

const TagFeatured = "FEATURED"

type Comment struct {
	ID         string         `gorm:"primaryKey;type:varchar(25)" json:"id"`
	StoryID    string         `gorm:"type:varchar(25);index;not null" json:"story_id"`
	AuthorID   *string        `gorm:"type:varchar(25);index" json:"author_id"`
	ParentID   *string        `gorm:"type:varchar(25);index" json:"parent_id,omitempty"`
	Body       string         `gorm:"type:text" json:"body"`
	RevisionID string         `gorm:"type:varchar(25);not null" json:"revision_id"`
	Status     CommentStatus  `gorm:"type:varchar(20);default:'NONE';index" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Story  Story        `gorm:"foreignKey:StoryID" json:"-"`
	Author *User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags   []CommentTag `gorm:"foreignKey:CommentID" json:"tags"`
}

// BeforeCreate hook to generate CUID and the first revision
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = cuid.New()
	}
	if c.RevisionID == "" {
		c.RevisionID = cuid.New()
	}
	return nil
}

// HasTag reports whether the comment carries the tag code
func (c *Comment) HasTag(code string) bool {
	for _, t := range c.Tags {
		if t.Code == code {
			return true
		}
	}
	return false
}

// AuthorUsername returns the author's username, or "" when there is no author
func (c *Comment) AuthorUsername() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Username
}

type CommentTag struct {
	ID        string    `gorm:"primaryKey;type:varchar(25)" json:"-"`
	CommentID string    `gorm:"type:varchar(25);uniqueIndex:idx_comment_tag;not null" json:"-"`
	Code      string    `gorm:"type:varchar(32);uniqueIndex:idx_comment_tag;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook to generate CUID
func (t *CommentTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = cuid.New()
	}
	return nil
}

// Settings holds the site-wide configuration. There is a single row.
type Settings struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	EmbedAllowReplies *bool     `json:"embedded_comments_allow_replies"`
	ReactionLabel     string    `gorm:"default:'Respect'" json:"reaction_label"`
	ReactionIcon      string    `gorm:"default:'thumb_up'" json:"reaction_icon"`
	SSOEnabled        bool      `gorm:"default:false" json:"sso_enabled"`
	SSOTargetAdmin    bool      `gorm:"default:false" json:"sso_target_admin"`
	LiveChatEnabled   bool      `gorm:"default:true" json:"live_chat_enabled"`
	CommentMaxLength  int       `gorm:"default:0" json:"comment_max_length"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AllowReplies resolves the embedded comments setting, true when unset
func (s *Settings) AllowReplies() bool {
	if s.EmbedAllowReplies == nil {
		return true
	}
	return *s.EmbedAllowReplies
}

type DSAReportStatus string

const (
	DSAReportAwaitingReview DSAReportStatus = "AWAITING_REVIEW"
	DSAReportUnderReview    DSAReportStatus = "UNDER_REVIEW"
	DSAReportCompleted      DSAReportStatus = "COMPLETED"
	DSAReportVoid           DSAReportStatus = "VOID"
)

// OpenDSAReportStatuses are the statuses of reports still waiting on a decision
var OpenDSAReportStatuses = []DSAReportStatus{DSAReportAwaitingReview, DSAReportUnderReview}

func (s DSAReportStatus) Open() bool {
	for _, open := range OpenDSAReportStatuses {
		if s == open {
			return true
		}
	}
	return false
}

func (s DSAReportStatus) Valid() bool {
	switch s {
	case DSAReportAwaitingReview, DSAReportUnderReview, DSAReportCompleted, DSAReportVoid:
		return true
	}
	return false
}

// DSAReport is an illegal content report filed against a comment
type DSAReport struct {
	ID                   string          `gorm:"primaryKey;type:varchar(25)" json:"id"`
	ReferenceID          string          `gorm:"uniqueIndex;not null" json:"reference_id"`
	Status               DSAReportStatus `gorm:"type:varchar(20);default:'AWAITING_REVIEW';index" json:"status"`
	ReporterID           *string         `gorm:"type:varchar(25)" json:"reporter_id"`
	CommentID            *string         `gorm:"type:varchar(25);index" json:"comment_id"`
	LawBrokenDescription string          `gorm:"type:text" json:"law_broken_description"`
	AdditionalInfo       string          `gorm:"type:text" json:"additional_info"`
	LastUpdated          *time.Time      `json:"last_updated"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`

	// Relations
	Reporter *User    `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Comment  *Comment `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
}

// BeforeCreate hook to generate CUID
func (r *DSAReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = cuid.New()
	}
	return nil
}
