package handlers

import (
	"net/http"

	"github.com/ekinyalgin/curiora/internal/db"
	"github.com/ekinyalgin/curiora/internal/services"
	"github.com/ekinyalgin/curiora/internal/utils"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tags *services.TagService
}

func NewTagHandler() *TagHandler {
	return &TagHandler{
		tags: services.NewTagService(db.DB),
	}
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List()
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// ToggleFollow follows or unfollows a tag for the session user.
func (h *TagHandler) ToggleFollow(c *gin.Context) {
	user := CurrentUser(c)
	tagID := utils.StringToUint(c.Param("id"))

	following, count, err := h.tags.ToggleFollow(user.ID, tagID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"following":      following,
		"follower_count": count,
	})
}

// Following lists the session user's followed tags.
func (h *TagHandler) Following(c *gin.Context) {
	user := CurrentUser(c)

	tags, err := h.tags.Following(user.ID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
