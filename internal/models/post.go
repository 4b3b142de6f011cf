package models

import (
	"time"
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Pid         string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	CategoryID  uint      `gorm:"not null;index;default:1" json:"category_id"`
	Category    Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	Tags        []Tag     `gorm:"many2many:post_tags;" json:"tags"`
	ReportCount int       `gorm:"default:0" json:"report_count"`
	Views       int       `gorm:"default:0" json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled at query time, not stored
	CommentCount int `gorm:"-" json:"comment_count"`
}
