package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ekinyalgin/curiora/internal/models"

	"gorm.io/gorm"
)

// Comment list sort orders.
const (
	SortBest          = "best"
	SortNew           = "new"
	SortOld           = "old"
	SortControversial = "controversial"
)

// CommentService owns the comment lifecycle: creation, edits, the
// pending/approved/archived state machine, soft-delete/restore and
// hard deletion with cascade.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

type CreateCommentInput struct {
	PostID   uint
	Body     string
	ParentID *uint
}

// Create inserts a comment. Moderators publish directly as approved;
// everyone else starts out pending. Replies are pinned to a top-level
// parent: replying to a reply attaches to that reply's own parent, so
// threads never nest deeper than one level.
func (s *CommentService) Create(actor *models.User, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("comment body is required: %w", ErrValidation)
	}

	var post models.Post
	if err := s.db.First(&post, in.PostID).Error; err != nil {
		return nil, fmt.Errorf("post %d: %w", in.PostID, ErrNotFound)
	}

	parentID := in.ParentID
	if parentID != nil {
		var parent models.Comment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			return nil, fmt.Errorf("parent comment %d does not exist: %w", *parentID, ErrValidation)
		}
		if parent.PostID != post.ID {
			return nil, fmt.Errorf("parent comment belongs to another post: %w", ErrValidation)
		}
		if parent.ParentID != nil {
			// Flatten: attach to the top-level comment instead.
			parentID = parent.ParentID
		}
	}

	status := models.CommentStatusPending
	if actor.CanModerate() {
		status = models.CommentStatusApproved
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   actor.ID,
		ParentID: parentID,
		Body:     in.Body,
		Status:   status,
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.User = *actor
	return &comment, nil
}

// UpdateText replaces the body. Owners may edit their own comments,
// moderators may edit any.
func (s *CommentService) UpdateText(actor *models.User, id uint, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("comment body is required: %w", ErrValidation)
	}

	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	if comment.UserID != actor.ID && !actor.CanModerate() {
		return nil, fmt.Errorf("edit comment %d: %w", id, ErrUnauthorized)
	}

	if err := s.db.Model(&comment).Update("body", body).Error; err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	comment.Body = body
	return &comment, nil
}

// SetStatus moves a comment between pending, approved and archived.
// Entering archived stamps ArchivedAt (caller-supplied time or now);
// leaving it clears the stamp, keeping status==archived equivalent to
// ArchivedAt being set.
func (s *CommentService) SetStatus(actor *models.User, id uint, status models.CommentStatus, archivedAt *time.Time) (*models.Comment, error) {
	if !actor.CanModerate() {
		return nil, fmt.Errorf("change comment status: %w", ErrUnauthorized)
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}

	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}

	updates := map[string]interface{}{"status": status}
	if status == models.CommentStatusArchived {
		ts := time.Now()
		if archivedAt != nil {
			ts = *archivedAt
		}
		updates["archived_at"] = &ts
		comment.ArchivedAt = &ts
	} else {
		updates["archived_at"] = nil
		comment.ArchivedAt = nil
	}

	if err := s.db.Model(&comment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update comment status: %w", err)
	}
	comment.Status = status
	return &comment, nil
}

// SoftDelete hides a comment from default listings without losing the
// row. Status is untouched so a later restore puts the comment back
// exactly as it was.
func (s *CommentService) SoftDelete(actor *models.User, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	if comment.UserID != actor.ID && !actor.CanModerate() {
		return nil, fmt.Errorf("delete comment %d: %w", id, ErrUnauthorized)
	}

	if err := s.db.Model(&comment).Update("is_deleted", true).Error; err != nil {
		return nil, fmt.Errorf("soft delete comment: %w", err)
	}
	comment.IsDeleted = true
	return &comment, nil
}

// Restore undoes a soft delete. Moderator-only; restoring does not
// auto-approve.
func (s *CommentService) Restore(actor *models.User, id uint) (*models.Comment, error) {
	if !actor.CanModerate() {
		return nil, fmt.Errorf("restore comment: %w", ErrUnauthorized)
	}

	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}

	if err := s.db.Model(&comment).Update("is_deleted", false).Error; err != nil {
		return nil, fmt.Errorf("restore comment: %w", err)
	}
	comment.IsDeleted = false
	return &comment, nil
}

// HardDelete removes the row for good, cascading to direct replies and
// to the votes, vote counts and reports of everything removed.
func (s *CommentService) HardDelete(actor *models.User, id uint) error {
	if !actor.CanModerate() {
		return fmt.Errorf("hard delete comment: %w", ErrUnauthorized)
	}

	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		return fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ids := []uint{comment.ID}
		var replyIDs []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		ids = append(ids, replyIDs...)

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_type = ? AND item_id IN ?", models.ItemTypeComment, ids).Delete(&models.VoteCount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
}

func (s *CommentService) Get(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.Preload("User").First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return &comment, nil
}

type ListCommentsOptions struct {
	PostID         uint   // 0 = all posts
	Search         string // matches comment body or author name
	Sort           string // best, new, old, controversial; default best
	IncludeDeleted bool
}

// List fetches comments flat, attaches vote counts, assembles the
// one-level thread and sorts the top level.
func (s *CommentService) List(opts ListCommentsOptions) ([]*models.Comment, error) {
	query := s.db.Preload("User").Order("created_at ASC")
	if opts.PostID != 0 {
		query = query.Where("post_id = ?", opts.PostID)
	}
	if !opts.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where("LOWER(body) LIKE ? OR user_id IN (?)", pattern,
			s.db.Model(&models.User{}).Select("id").Where("LOWER(username) LIKE ?", pattern))
	}

	var comments []*models.Comment
	if err := query.Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	if err := s.attachVoteCounts(comments); err != nil {
		return nil, err
	}

	tops := threadComments(comments)
	sortTopLevel(tops, opts.Sort)
	return tops, nil
}

func (s *CommentService) attachVoteCounts(comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	var counts []models.VoteCount
	if err := s.db.Where("item_type = ? AND item_id IN ?", models.ItemTypeComment, ids).Find(&counts).Error; err != nil {
		return fmt.Errorf("load vote counts: %w", err)
	}

	countMap := make(map[uint]models.VoteCount, len(counts))
	for _, vc := range counts {
		countMap[vc.ItemID] = vc
	}
	for _, c := range comments {
		if vc, ok := countMap[c.ID]; ok {
			c.UpVotes = vc.UpVotes
			c.DownVotes = vc.DownVotes
		}
	}
	return nil
}

// threadComments turns a flat, chronologically ordered list into
// top-level comments with their replies. A reply whose parent was
// filtered out of the listing is promoted to the top level rather than
// dropped.
func threadComments(comments []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	tops := make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID == nil {
			tops = append(tops, c)
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			tops = append(tops, c)
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}
	return tops
}

func sortTopLevel(tops []*models.Comment, order string) {
	switch order {
	case SortNew:
		sort.SliceStable(tops, func(i, j int) bool {
			return tops[i].CreatedAt.After(tops[j].CreatedAt)
		})
	case SortOld:
		sort.SliceStable(tops, func(i, j int) bool {
			return tops[i].CreatedAt.Before(tops[j].CreatedAt)
		})
	case SortControversial:
		sort.SliceStable(tops, func(i, j int) bool {
			return tops[i].Controversy() > tops[j].Controversy()
		})
	default: // best
		sort.SliceStable(tops, func(i, j int) bool {
			return tops[i].Score() > tops[j].Score()
		})
	}
}
