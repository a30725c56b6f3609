package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/api/auth"
	"github.com/sahelys/sahelys-backend/isoweek"
	"github.com/sahelys/sahelys-backend/middleware"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

// Services groups everything the router depends on.
type Services struct {
	Users    *mongosvc.UserService
	Reports  *mongosvc.ReportService
	Comments *mongosvc.CommentService
	Messages *mongosvc.MessageService
	Stats    *mongosvc.StatsService
}

// NewRouter wires the full route tree under /api/v1.
func NewRouter(services Services, jwtManager *auth.JWTManager, formatter *isoweek.Formatter, logger *zap.Logger, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := &authHandlers{users: services.Users, jwtManager: jwtManager, logger: logger}
	userH := &userHandlers{users: services.Users, logger: logger}
	reportH := &reportHandlers{reports: services.Reports, stats: services.Stats, logger: logger}
	commentH := &commentHandlers{comments: services.Comments, logger: logger}
	messageH := &messageHandlers{messages: services.Messages, logger: logger}
	exportH := &exportHandlers{reports: services.Reports, formatter: formatter, logger: logger}
	dashboardH := &dashboardHandlers{statsSvc: services.Stats, logger: logger}

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authH.register)
		authGroup.POST("/login", authH.login)
	}

	authed := v1.Group("")
	authed.Use(middleware.Auth(jwtManager, services.Users))
	{
		authed.GET("/auth/me", authH.me)
		authed.PUT("/auth/password", authH.changePassword)

		users := authed.Group("/users")
		{
			users.GET("/employees/list", userH.listEmployees)
			users.GET("/:id", userH.get)

			admin := users.Group("", middleware.RequireAdmin())
			{
				admin.POST("", userH.create)
				admin.GET("", userH.list)
				admin.PUT("/:id", userH.update)
				admin.DELETE("/:id", userH.delete)
			}
		}

		reports := authed.Group("/reports")
		{
			reports.POST("", reportH.createWeekly)
			reports.POST("/simple", reportH.createSimple)
			reports.GET("", reportH.list)
			reports.GET("/stats/weekly", middleware.RequireAdmin(), reportH.weeklyStats)
			reports.GET("/:id", reportH.get)
			reports.PUT("/:id", reportH.updateWeekly)
			reports.PUT("/simple/:id", reportH.updateSimple)
			reports.DELETE("/:id", reportH.delete)
		}

		comments := authed.Group("/comments")
		{
			comments.POST("", middleware.RequireAdmin(), commentH.create)
			comments.GET("", middleware.RequireAdmin(), commentH.list)
			comments.GET("/report/:reportId", commentH.listByReport)
			comments.GET("/:id", commentH.get)
			comments.PUT("/:id", middleware.RequireAdmin(), commentH.update)
			comments.DELETE("/:id", middleware.RequireAdmin(), commentH.delete)
		}

		messages := authed.Group("/messages")
		{
			messages.POST("", middleware.RequireAdmin(), messageH.send)
			messages.POST("/broadcast", middleware.RequireAdmin(), messageH.broadcast)
			messages.GET("/inbox", messageH.inbox)
			messages.GET("/stats/summary", messageH.stats)
			messages.GET("/:id", messageH.get)
			messages.PATCH("/:id/mark-read", messageH.markRead)
			messages.DELETE("/:id", middleware.RequireAdmin(), messageH.delete)
		}

		authed.GET("/dashboard/stats", dashboardH.stats)

		exports := authed.Group("/exports", middleware.RequireAdmin())
		{
			exports.GET("/reports/csv", exportH.csv)
			exports.GET("/reports/pdf", exportH.pdf)
		}
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
