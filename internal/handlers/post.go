package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/ekinyalgin/curiora/internal/db"
	"github.com/ekinyalgin/curiora/internal/models"
	"github.com/ekinyalgin/curiora/internal/services"
	"github.com/ekinyalgin/curiora/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	comments *services.CommentService
	votes    *services.VoteService
}

func NewPostHandler() *PostHandler {
	return &PostHandler{
		comments: services.NewCommentService(db.DB),
		votes:    services.NewVoteService(db.DB),
	}
}

// fillCommentCounts batch-loads visible comment counts for a page of posts.
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ? AND is_deleted = ?", postIDs, false).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

// List is the public post index: paginated, newest first, optionally
// narrowed by category, tag or a title/body search. Pages are cached
// for a minute.
func (h *PostHandler) List(c *gin.Context) {
	page := utils.StringToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}
	category := c.Query("category")
	tag := c.Query("tag")
	search := c.Query("q")

	cacheKey := fmt.Sprintf("post:list:%d:%s:%s:%s", page, category, tag, search)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if data, ok := cached.(gin.H); ok {
			c.JSON(http.StatusOK, data)
			return
		}
	}

	perPage := 30
	offset := (page - 1) * perPage

	query := db.DB.Model(&models.Post{}).Preload("User").Preload("Category").Preload("Tags")
	if category != "" {
		query = query.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.name = ?", category)
	}
	if tag != "" {
		query = query.Where("posts.id IN (?)",
			db.DB.Table("post_tags").Select("post_id").
				Joins("JOIN tags ON tags.id = post_tags.tag_id").
				Where("tags.name = ?", tag))
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}

	var total int64
	query.Count(&total)
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	query.Order("created_at DESC").Limit(perPage).Offset(offset).Find(&posts)
	fillCommentCounts(posts)

	data := gin.H{
		"posts":       posts,
		"page":        page,
		"total_pages": totalPages,
		"total":       total,
	}
	utils.GetCache().Set(cacheKey, data, 1*time.Minute)
	c.JSON(http.StatusOK, data)
}

// Detail serves one post with its rendered body, vote counts and the
// threaded comments. The shared part is cached for five minutes; the
// view counter still ticks on cache hits.
func (h *PostHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")

	cacheKey := fmt.Sprintf("post:detail:%s", pid)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if data, ok := cached.(gin.H); ok {
			if post, ok := data["post"].(models.Post); ok {
				db.DB.Model(&models.Post{}).Where("id = ?", post.ID).
					UpdateColumn("views", gorm.Expr("views + 1"))
			}
			c.JSON(http.StatusOK, data)
			return
		}
	}

	var post models.Post
	if err := db.DB.Preload("User").Preload("Category").Preload("Tags").
		Where("pid = ?", pid).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	db.DB.Model(&post).UpdateColumn("views", post.Views+1)
	post.Views++

	comments, err := h.comments.List(services.ListCommentsOptions{
		PostID: post.ID,
		Sort:   c.Query("sort"),
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	counts, err := h.votes.Counts(models.ItemTypePost, post.ID)
	if err != nil {
		ServiceError(c, err)
		return
	}

	data := gin.H{
		"post":         post,
		"content_html": utils.RenderMarkdown(post.Content),
		"up_votes":     counts.UpVotes,
		"down_votes":   counts.DownVotes,
		"score":        counts.Score(),
		"comments":     comments,
	}
	utils.GetCache().Set(cacheKey, data, 5*time.Minute)
	c.JSON(http.StatusOK, data)
}
