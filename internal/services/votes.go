package services

import (
	"fmt"

	"github.com/ekinyalgin/curiora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteService applies vote mutations and keeps the denormalized
// per-item counters in step with the vote rows.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// Cast records a vote for (itemType, itemID) by userID. value is +1 or
// -1; 0 retracts any existing vote, and re-casting the current value
// toggles it off. The vote write and the counter recount run in one
// transaction so concurrent voters cannot lose updates.
func (s *VoteService) Cast(itemType string, itemID uint, userID uint, value int) (*models.VoteCount, error) {
	if itemType != models.ItemTypePost && itemType != models.ItemTypeComment {
		return nil, fmt.Errorf("unknown item type %q: %w", itemType, ErrValidation)
	}
	if value != 1 && value != -1 && value != 0 {
		return nil, fmt.Errorf("vote value must be 1, -1 or 0: %w", ErrValidation)
	}

	if err := s.targetExists(itemType, itemID); err != nil {
		return nil, err
	}

	var result models.VoteCount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ?", userID)
		if itemType == models.ItemTypePost {
			query = query.Where("post_id = ?", itemID)
		} else {
			query = query.Where("comment_id = ?", itemID)
		}

		var existing models.Vote
		found := query.First(&existing).Error == nil

		switch {
		case value == 0:
			if found {
				if err := tx.Delete(&existing).Error; err != nil {
					return err
				}
			}
		case found && existing.Value == value:
			// Same vote again toggles it off.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case found:
			if err := tx.Model(&existing).Update("value", value).Error; err != nil {
				return err
			}
		default:
			vote := models.Vote{UserID: userID, Value: value}
			if itemType == models.ItemTypePost {
				vote.PostID = &itemID
			} else {
				vote.CommentID = &itemID
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		}

		count, err := recountVotes(tx, itemType, itemID)
		if err != nil {
			return err
		}
		result = *count
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	return &result, nil
}

// Counts returns the aggregate row for an item, zero-valued when the
// item has never been voted on.
func (s *VoteService) Counts(itemType string, itemID uint) (*models.VoteCount, error) {
	var vc models.VoteCount
	err := s.db.Where("item_type = ? AND item_id = ?", itemType, itemID).First(&vc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.VoteCount{ItemType: itemType, ItemID: itemID}, nil
		}
		return nil, fmt.Errorf("load vote count: %w", err)
	}
	return &vc, nil
}

func (s *VoteService) targetExists(itemType string, itemID uint) error {
	var err error
	if itemType == models.ItemTypePost {
		err = s.db.Select("id").First(&models.Post{}, itemID).Error
	} else {
		err = s.db.Select("id").First(&models.Comment{}, itemID).Error
	}
	if err != nil {
		return fmt.Errorf("%s %d: %w", itemType, itemID, ErrNotFound)
	}
	return nil
}

// recountVotes recomputes up/down from the vote rows and upserts the
// aggregate. Must run inside the caller's transaction.
func recountVotes(tx *gorm.DB, itemType string, itemID uint) (*models.VoteCount, error) {
	column := "comment_id"
	if itemType == models.ItemTypePost {
		column = "post_id"
	}

	var up, down int64
	if err := tx.Model(&models.Vote{}).Where(column+" = ? AND value = 1", itemID).Count(&up).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Vote{}).Where(column+" = ? AND value = -1", itemID).Count(&down).Error; err != nil {
		return nil, err
	}

	vc := models.VoteCount{
		ItemType:  itemType,
		ItemID:    itemID,
		UpVotes:   int(up),
		DownVotes: int(down),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_type"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"up_votes", "down_votes", "updated_at"}),
	}).Create(&vc).Error
	if err != nil {
		return nil, err
	}
	return &vc, nil
}
