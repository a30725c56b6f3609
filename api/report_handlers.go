package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/middleware"
	"github.com/sahelys/sahelys-backend/models"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

type reportHandlers struct {
	reports *mongosvc.ReportService
	stats   *mongosvc.StatsService
	logger  *zap.Logger
}

type weeklyReportRequest struct {
	WeekISO      string            `json:"week_iso" binding:"required"`
	Tasks        []models.TaskItem `json:"tasks" binding:"required"`
	Difficulties string            `json:"difficulties"`
	Remarks      string            `json:"remarks"`
}

type weeklyReportUpdateRequest struct {
	Tasks        []models.TaskItem `json:"tasks"`
	Difficulties *string           `json:"difficulties"`
	Remarks      *string           `json:"remarks"`
}

type simpleReportRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Sections    []models.ReportSection `json:"sections" binding:"required"`
}

func (h *reportHandlers) createWeekly(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req weeklyReportRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.reports.CreateWeeklyReport(c.Request.Context(), actor, mongosvc.WeeklyReportInput{
		WeekISO:      req.WeekISO,
		Tasks:        req.Tasks,
		Difficulties: req.Difficulties,
		Remarks:      req.Remarks,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("weekly report created",
		zap.String("week", report.WeekISO),
		zap.String("user", report.UserName),
	)
	c.JSON(http.StatusCreated, report)
}

func (h *reportHandlers) createSimple(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req simpleReportRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.reports.CreateSimpleReport(c.Request.Context(), actor, mongosvc.SimpleReportInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Sections:    req.Sections,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *reportHandlers) list(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	limit, skip := pagination(c)

	filter := mongosvc.ReportFilter{
		WeekISO: c.Query("week_iso"),
		UserID:  c.Query("user_id"),
	}
	items, err := h.reports.ListReports(c.Request.Context(), actor, filter, limit, skip)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *reportHandlers) get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) updateWeekly(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req weeklyReportUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.reports.UpdateWeeklyReport(c.Request.Context(), actor, id, mongosvc.WeeklyReportUpdate{
		Tasks:        req.Tasks,
		Difficulties: req.Difficulties,
		Remarks:      req.Remarks,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) updateSimple(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req simpleReportRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.reports.UpdateSimpleReport(c.Request.Context(), actor, id, mongosvc.SimpleReportInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Sections:    req.Sections,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportHandlers) delete(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.reports.DeleteReport(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "report deleted"})
}

func (h *reportHandlers) weeklyStats(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	stats, err := h.stats.GetWeeklyStats(c.Request.Context(), actor, c.Query("start_week"), c.Query("end_week"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
