package handlers

import (
	"net/http"

	"github.com/ekinyalgin/curiora/internal/db"
	"github.com/ekinyalgin/curiora/internal/models"
	"github.com/ekinyalgin/curiora/internal/services"
	"github.com/ekinyalgin/curiora/internal/utils"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{
		reports: services.NewReportService(db.DB),
	}
}

// List is the moderation queue: filterable by target type and
// category, newest first, annotated with live report counts.
func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.reports.List(services.ListReportsOptions{
		Filter:   c.Query("filter"),
		Category: models.ReportCategory(c.Query("category")),
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

type createReportRequest struct {
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
	PostID      *uint  `json:"post_id"`
	CommentID   *uint  `json:"comment_id"`
}

func (h *ReportHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reports.Create(user, services.CreateReportInput{
		Category:    models.ReportCategory(req.Category),
		Description: req.Description,
		PostID:      req.PostID,
		CommentID:   req.CommentID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// Resolve approves the reported comment.
func (h *ReportHandler) Resolve(c *gin.Context) {
	user := CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	report, err := h.reports.Resolve(user, id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Delete dismisses the report and zeroes the target's counter.
func (h *ReportHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	if err := h.reports.Delete(user, id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
