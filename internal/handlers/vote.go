package handlers

import (
	"fmt"
	"net/http"

	"github.com/ekinyalgin/curiora/internal/db"
	"github.com/ekinyalgin/curiora/internal/models"
	"github.com/ekinyalgin/curiora/internal/services"
	"github.com/ekinyalgin/curiora/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{
		votes: services.NewVoteService(db.DB),
	}
}

type castVoteRequest struct {
	ItemType string `json:"item_type" binding:"required"`
	ItemID   uint   `json:"item_id" binding:"required"`
	Value    int    `json:"value"` // 1, -1, or 0 to retract
}

// Cast applies a vote and returns the fresh aggregate for the item.
func (h *VoteHandler) Cast(c *gin.Context) {
	user := CurrentUser(c)

	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.votes.Cast(req.ItemType, req.ItemID, user.ID, req.Value)
	if err != nil {
		ServiceError(c, err)
		return
	}

	h.invalidateCachedPost(req.ItemType, req.ItemID)
	c.JSON(http.StatusOK, gin.H{
		"item_type":  count.ItemType,
		"item_id":    count.ItemID,
		"up_votes":   count.UpVotes,
		"down_votes": count.DownVotes,
		"score":      count.Score(),
	})
}

// invalidateCachedPost drops the cached detail page of the post whose
// score just changed, directly or through one of its comments.
func (h *VoteHandler) invalidateCachedPost(itemType string, itemID uint) {
	postID := itemID
	if itemType == models.ItemTypeComment {
		var comment models.Comment
		if err := db.DB.Select("post_id").First(&comment, itemID).Error; err != nil {
			return
		}
		postID = comment.PostID
	}

	var post models.Post
	if err := db.DB.Select("pid").First(&post, postID).Error; err != nil {
		return
	}
	utils.GetCache().Delete(fmt.Sprintf("post:detail:%s", post.Pid))
}
