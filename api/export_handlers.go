package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/isoweek"
	"github.com/sahelys/sahelys-backend/middleware"
	"github.com/sahelys/sahelys-backend/services/export"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

type exportHandlers struct {
	reports   *mongosvc.ReportService
	formatter *isoweek.Formatter
	logger    *zap.Logger
}

func (h *exportHandlers) csv(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	startWeek := c.Query("start_week")
	endWeek := c.Query("end_week")

	reports, err := h.reports.ListReportViews(c.Request.Context(), actor, startWeek, endWeek, c.Query("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var data []byte
	if c.DefaultQuery("format", "detailed") == "summary" {
		data, err = export.CSVSummary(reports, h.formatter)
	} else {
		data, err = export.CSV(reports, h.formatter)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("csv export", zap.Int("reports", len(reports)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFilename(startWeek, endWeek)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *exportHandlers) pdf(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	startWeek := c.Query("start_week")
	endWeek := c.Query("end_week")

	reports, err := h.reports.ListReportViews(c.Request.Context(), actor, startWeek, endWeek, c.Query("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	data, err := export.PDF(reports, h.formatter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("pdf export", zap.Int("reports", len(reports)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.PDFFilename(startWeek, endWeek)))
	c.Data(http.StatusOK, "application/pdf", data)
}
