package services

import (
	"fmt"

	"github.com/ekinyalgin/curiora/internal/models"

	"gorm.io/gorm"
)

// TagService handles tag listing and the follow/unfollow subscription,
// keeping the denormalized follower counter inside the same
// transaction as the follow row.
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List() ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// ToggleFollow follows the tag if the user does not follow it yet and
// unfollows otherwise. Returns the new following state and follower
// count.
func (s *TagService) ToggleFollow(userID, tagID uint) (bool, int, error) {
	var tag models.Tag
	if err := s.db.First(&tag, tagID).Error; err != nil {
		return false, 0, fmt.Errorf("tag %d: %w", tagID, ErrNotFound)
	}

	var following bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.TagFollow
		if err := tx.Where("user_id = ? AND tag_id = ?", userID, tagID).First(&existing).Error; err == nil {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			following = false
			return tx.Model(&tag).UpdateColumn("follower_count", gorm.Expr("follower_count - 1")).Error
		}

		follow := models.TagFollow{UserID: userID, TagID: tagID}
		if err := tx.Create(&follow).Error; err != nil {
			return err
		}
		following = true
		return tx.Model(&tag).UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error
	})
	if err != nil {
		return false, 0, fmt.Errorf("toggle tag follow: %w", err)
	}

	var count int
	if err := s.db.Model(&models.Tag{}).Select("follower_count").Where("id = ?", tagID).Scan(&count).Error; err != nil {
		return following, 0, fmt.Errorf("load follower count: %w", err)
	}
	return following, count, nil
}

// Following lists the tags a user currently follows.
func (s *TagService) Following(userID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.Model(&models.Tag{}).
		Joins("JOIN tag_follows ON tag_follows.tag_id = tags.id").
		Where("tag_follows.user_id = ?", userID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("list followed tags: %w", err)
	}
	return tags, nil
}
