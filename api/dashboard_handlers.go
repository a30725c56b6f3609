package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/middleware"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

type dashboardHandlers struct {
	statsSvc *mongosvc.StatsService
	logger   *zap.Logger
}

func (h *dashboardHandlers) stats(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	stats, err := h.statsSvc.GetDashboardStats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
