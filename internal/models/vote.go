package models

import (
	"time"
)

const (
	ItemTypePost    = "post"
	ItemTypeComment = "comment"
)

type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PostID    *uint     `gorm:"index" json:"post_id"`
	CommentID *uint     `gorm:"index" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
}

// VoteCount is the denormalized aggregate, one row per voted item.
// It is recomputed from Vote rows inside the same transaction as every
// vote mutation, so it never drifts from the live counts.
type VoteCount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemType  string    `gorm:"size:20;not null;uniqueIndex:idx_vote_count_item" json:"item_type"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_vote_count_item" json:"item_id"`
	UpVotes   int       `gorm:"default:0" json:"up_votes"`
	DownVotes int       `gorm:"default:0" json:"down_votes"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (vc *VoteCount) Score() int {
	return vc.UpVotes - vc.DownVotes
}
