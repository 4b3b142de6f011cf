package models

import (
	"time"
)

type Tag struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null;unique" json:"name"`
	FollowerCount int       `gorm:"default:0" json:"follower_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TagFollow is one row per (user, tag) subscription.
type TagFollow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_tag" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	TagID     uint      `gorm:"not null;index;uniqueIndex:idx_user_tag" json:"tag_id"`
	Tag       Tag       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}
