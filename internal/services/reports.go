package services

import (
	"fmt"
	"log"

	"github.com/ekinyalgin/curiora/internal/models"

	"gorm.io/gorm"
)

// ReportService owns the report lifecycle. Reports are ephemeral
// moderation signals, not an audit trail: deleting one dismisses all
// outstanding reports on the target by resetting its counter to zero.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

type CreateReportInput struct {
	Category    models.ReportCategory
	Description string
	PostID      *uint
	CommentID   *uint
}

// Create files a report against exactly one of a post or a comment and
// increments the target's report counter in the same transaction.
// Moderators are notified asynchronously.
func (s *ReportService) Create(reporter *models.User, in CreateReportInput) (*models.Report, error) {
	if (in.PostID == nil) == (in.CommentID == nil) {
		return nil, fmt.Errorf("exactly one of post_id and comment_id must be set: %w", ErrValidation)
	}
	if !models.ValidReportCategory(in.Category) {
		return nil, fmt.Errorf("unknown report category %q: %w", in.Category, ErrValidation)
	}

	report := models.Report{
		UserID:      reporter.ID,
		Category:    in.Category,
		Description: in.Description,
		PostID:      in.PostID,
		CommentID:   in.CommentID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if in.PostID != nil {
			if err := tx.Select("id").First(&models.Post{}, *in.PostID).Error; err != nil {
				return fmt.Errorf("post %d: %w", *in.PostID, ErrNotFound)
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", *in.PostID).
				UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Select("id").First(&models.Comment{}, *in.CommentID).Error; err != nil {
				return fmt.Errorf("comment %d: %w", *in.CommentID, ErrNotFound)
			}
			if err := tx.Model(&models.Comment{}).Where("id = ?", *in.CommentID).
				UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error; err != nil {
				return err
			}
		}
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, err
	}

	// Notify everyone holding moderator rights, off the request path.
	go s.notifyModerators(&report, reporter)

	return &report, nil
}

func (s *ReportService) notifyModerators(report *models.Report, reporter *models.User) {
	var moderators []models.User
	if err := s.db.Where("role IN ?", []string{models.RoleModerator, models.RoleAdmin}).Find(&moderators).Error; err != nil {
		log.Printf("Failed to load moderators for report %d: %v", report.ID, err)
		return
	}

	message := fmt.Sprintf("New %s report on %s %d: %s",
		report.Category, report.ItemType(), targetID(report), report.Description)

	for _, moderator := range moderators {
		notification := models.Notification{
			UserID:  moderator.ID,
			ActorID: &reporter.ID,
			Type:    models.NotificationTypeReport,
			Message: message,
		}
		if err := s.db.Create(&notification).Error; err != nil {
			log.Printf("Failed to create report notification for user %d: %v", moderator.ID, err)
		}
	}
}

func targetID(r *models.Report) uint {
	if r.CommentID != nil {
		return *r.CommentID
	}
	if r.PostID != nil {
		return *r.PostID
	}
	return 0
}

// Resolve acts on a report by approving the reported comment. Reports
// against posts carry no richer action; resolving them is a no-op
// beyond acknowledgment. The report row itself stays until deleted.
func (s *ReportService) Resolve(actor *models.User, id uint) (*models.Report, error) {
	if !actor.CanModerate() {
		return nil, fmt.Errorf("resolve report: %w", ErrUnauthorized)
	}

	var report models.Report
	if err := s.db.First(&report, id).Error; err != nil {
		return nil, fmt.Errorf("report %d: %w", id, ErrNotFound)
	}

	if report.CommentID != nil {
		err := s.db.Model(&models.Comment{}).Where("id = ?", *report.CommentID).
			Updates(map[string]interface{}{
				"status":      models.CommentStatusApproved,
				"archived_at": nil,
			}).Error
		if err != nil {
			return nil, fmt.Errorf("approve reported comment: %w", err)
		}
	}
	return &report, nil
}

// Delete removes the report and resets the target's counter to zero.
// This is a full reset, not a decrement: one dismissal clears every
// outstanding report's effect on the item.
func (s *ReportService) Delete(actor *models.User, id uint) error {
	if !actor.CanModerate() {
		return fmt.Errorf("delete report: %w", ErrUnauthorized)
	}

	var report models.Report
	if err := s.db.First(&report, id).Error; err != nil {
		return fmt.Errorf("report %d: %w", id, ErrNotFound)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&report).Error; err != nil {
			return err
		}
		if report.PostID != nil {
			return tx.Model(&models.Post{}).Where("id = ?", *report.PostID).
				UpdateColumn("report_count", 0).Error
		}
		return tx.Model(&models.Comment{}).Where("id = ?", *report.CommentID).
			UpdateColumn("report_count", 0).Error
	})
}

type ListReportsOptions struct {
	Filter   string                // "post", "comment" or "" for both
	Category models.ReportCategory // "" for all
}

// List returns reports newest first, each annotated with the live
// report_count of its target rather than anything stored on the report.
func (s *ReportService) List(opts ListReportsOptions) ([]*models.Report, error) {
	query := s.db.Preload("User").Order("created_at DESC")
	switch opts.Filter {
	case models.ItemTypePost:
		query = query.Where("post_id IS NOT NULL")
	case models.ItemTypeComment:
		query = query.Where("comment_id IS NOT NULL")
	}
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}

	var reports []*models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	if err := s.attachTargetCounts(reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *ReportService) attachTargetCounts(reports []*models.Report) error {
	var postIDs, commentIDs []uint
	for _, r := range reports {
		if r.PostID != nil {
			postIDs = append(postIDs, *r.PostID)
		} else if r.CommentID != nil {
			commentIDs = append(commentIDs, *r.CommentID)
		}
	}

	type countRow struct {
		ID          uint
		ReportCount int
	}

	postCounts := make(map[uint]int)
	if len(postIDs) > 0 {
		var rows []countRow
		if err := s.db.Model(&models.Post{}).Select("id, report_count").Where("id IN ?", postIDs).Scan(&rows).Error; err != nil {
			return fmt.Errorf("load post report counts: %w", err)
		}
		for _, row := range rows {
			postCounts[row.ID] = row.ReportCount
		}
	}

	commentCounts := make(map[uint]int)
	if len(commentIDs) > 0 {
		var rows []countRow
		if err := s.db.Model(&models.Comment{}).Select("id, report_count").Where("id IN ?", commentIDs).Scan(&rows).Error; err != nil {
			return fmt.Errorf("load comment report counts: %w", err)
		}
		for _, row := range rows {
			commentCounts[row.ID] = row.ReportCount
		}
	}

	for _, r := range reports {
		if r.PostID != nil {
			r.ReportCount = postCounts[*r.PostID]
		} else if r.CommentID != nil {
			r.ReportCount = commentCounts[*r.CommentID]
		}
	}
	return nil
}
