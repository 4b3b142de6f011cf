package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ekinyalgin/curiora/internal/db"
	"github.com/ekinyalgin/curiora/internal/models"
	"github.com/ekinyalgin/curiora/internal/services"
	"github.com/ekinyalgin/curiora/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{
		comments: services.NewCommentService(db.DB),
	}
}

// List returns comments threaded one level deep. Moderators may pass
// include_deleted=1 to see soft-deleted rows for the restore flow.
func (h *CommentHandler) List(c *gin.Context) {
	opts := services.ListCommentsOptions{
		PostID: utils.StringToUint(c.Query("post_id")),
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}
	if c.Query("include_deleted") == "1" {
		user := CurrentUser(c)
		opts.IncludeDeleted = user != nil && user.CanModerate()
	}

	comments, err := h.comments.List(opts)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type createCommentRequest struct {
	PostID   uint   `json:"post_id" binding:"required"`
	Body     string `json:"body" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.Create(user, services.CreateCommentInput{
		PostID:   req.PostID,
		Body:     req.Body,
		ParentID: req.ParentID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	h.invalidatePostCache(comment.PostID)
	c.JSON(http.StatusCreated, comment)
}

type updateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// Update is the full edit: replaces the comment text.
func (h *CommentHandler) Update(c *gin.Context) {
	user := CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.UpdateText(user, id, req.Body)
	if err != nil {
		ServiceError(c, err)
		return
	}

	h.invalidatePostCache(comment.PostID)
	c.JSON(http.StatusOK, comment)
}

type patchCommentRequest struct {
	Status     *string    `json:"status"`
	IsDeleted  *bool      `json:"is_deleted"`
	ArchivedAt *time.Time `json:"archived_at"`
}

// Patch applies a partial moderation update: status transition,
// soft-delete or restore. Fields are applied in that order when
// combined.
func (h *CommentHandler) Patch(c *gin.Context) {
	user := CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var req patchCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == nil && req.IsDeleted == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	var comment *models.Comment
	var err error

	if req.Status != nil {
		comment, err = h.comments.SetStatus(user, id, models.CommentStatus(*req.Status), req.ArchivedAt)
		if err != nil {
			ServiceError(c, err)
			return
		}
	}

	if req.IsDeleted != nil {
		if *req.IsDeleted {
			comment, err = h.comments.SoftDelete(user, id)
		} else {
			comment, err = h.comments.Restore(user, id)
		}
		if err != nil {
			ServiceError(c, err)
			return
		}
	}

	h.invalidatePostCache(comment.PostID)
	c.JSON(http.StatusOK, comment)
}

// Delete is the irreversible hard delete, moderator-only.
func (h *CommentHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	comment, err := h.comments.Get(id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	if err := h.comments.HardDelete(user, id); err != nil {
		ServiceError(c, err)
		return
	}

	h.invalidatePostCache(comment.PostID)
	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) invalidatePostCache(postID uint) {
	var post models.Post
	if err := db.DB.Select("pid").First(&post, postID).Error; err == nil {
		utils.GetCache().Delete(fmt.Sprintf("post:detail:%s", post.Pid))
	}
}
