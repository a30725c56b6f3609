package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/middleware"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

type commentHandlers struct {
	comments *mongosvc.CommentService
	logger   *zap.Logger
}

type createCommentRequest struct {
	ReportID string `json:"report_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *commentHandlers) create(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req createCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), actor, req.ReportID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *commentHandlers) listByReport(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	reportID, ok := idParam(c, "reportId")
	if !ok {
		return
	}

	comments, err := h.comments.GetByReport(c.Request.Context(), actor, reportID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *commentHandlers) list(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	limit, skip := pagination(c)

	comments, err := h.comments.ListAll(c.Request.Context(), actor, c.Query("report_id"), limit, skip)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *commentHandlers) get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *commentHandlers) update(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), actor, id, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *commentHandlers) delete(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
