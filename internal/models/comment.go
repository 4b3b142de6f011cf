package models

import (
	"time"
)

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusArchived CommentStatus = "archived"
)

// ValidStatus reports whether s is one of the three comment states.
func ValidStatus(s CommentStatus) bool {
	return s == CommentStatusPending || s == CommentStatusApproved || s == CommentStatusArchived
}

type Comment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	PostID      uint          `gorm:"not null;index" json:"post_id"`
	Post        Post          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	User        User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID    *uint         `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Body        string        `gorm:"type:text;not null" json:"body"`
	Status      CommentStatus `gorm:"size:20;default:'pending';not null;index" json:"status"`
	IsDeleted   bool          `gorm:"default:false;index" json:"is_deleted"`
	ArchivedAt  *time.Time    `json:"archived_at"` // Non-null iff Status == archived
	ReportCount int           `gorm:"default:0" json:"report_count"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Filled at query time, not stored
	Replies   []*Comment `gorm:"-" json:"replies,omitempty"`
	UpVotes   int        `gorm:"-" json:"up_votes"`
	DownVotes int        `gorm:"-" json:"down_votes"`
}

// Score is upvotes minus downvotes, used for the "best" sort.
func (c *Comment) Score() int {
	return c.UpVotes - c.DownVotes
}

// Controversy ranks comments that attract downvotes relative to their
// upvotes. downs / max(ups, 1) is a heuristic, not a statistical metric.
func (c *Comment) Controversy() float64 {
	ups := c.UpVotes
	if ups < 1 {
		ups = 1
	}
	return float64(c.DownVotes) / float64(ups)
}
