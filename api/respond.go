// Package api exposes the REST surface over gin.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/apperrors"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

// respondError maps the service error taxonomy onto HTTP statuses.
// Internal errors are logged with their cause but surface a generic body.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		logger.Error("internal error",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// idParam reads a path parameter that must parse as an ObjectID,
// responding 400 before the service layer is reached otherwise.
func idParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if !mongosvc.IsValidObjectID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return "", false
	}
	return id, true
}

// pagination reads limit/skip query params with sane bounds.
func pagination(c *gin.Context) (int64, int64) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	skip, err := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if err != nil || skip < 0 {
		skip = 0
	}
	return limit, skip
}
