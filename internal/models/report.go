package models

import (
	"time"
)

type ReportCategory string

const (
	ReportCategorySpam            ReportCategory = "spam"
	ReportCategoryHateSpeech      ReportCategory = "hate-speech"
	ReportCategoryMisinformation  ReportCategory = "misinformation"
	ReportCategoryInappropriateLg ReportCategory = "inappropriate-language"
	ReportCategoryInappropriate   ReportCategory = "inappropriate-content"
	ReportCategoryOther           ReportCategory = "other"
)

func ValidReportCategory(c ReportCategory) bool {
	switch c {
	case ReportCategorySpam, ReportCategoryHateSpeech, ReportCategoryMisinformation,
		ReportCategoryInappropriateLg, ReportCategoryInappropriate, ReportCategoryOther:
		return true
	}
	return false
}

// Report flags a post or a comment; exactly one of PostID/CommentID is set.
type Report struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"` // Reporter
	User        User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Category    ReportCategory `gorm:"size:40;not null" json:"category"`
	Description string         `gorm:"type:text" json:"description"`
	PostID      *uint          `gorm:"index" json:"post_id"`
	CommentID   *uint          `gorm:"index" json:"comment_id"`
	CreatedAt   time.Time      `json:"created_at"`

	// Live count on the reported item, filled at query time
	ReportCount int `gorm:"-" json:"report_count"`
}

// ItemType derives the target type from whichever reference is set.
func (r *Report) ItemType() string {
	if r.CommentID != nil {
		return ItemTypeComment
	}
	return ItemTypePost
}
