package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadcare/roadcare-backend-go/internal/config"
	"github.com/roadcare/roadcare-backend-go/internal/handler"
	"github.com/roadcare/roadcare-backend-go/internal/matching"
	"github.com/roadcare/roadcare-backend-go/internal/middleware"
	"github.com/roadcare/roadcare-backend-go/internal/repository"
	"github.com/roadcare/roadcare-backend-go/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(300, time.Minute))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Repositories
	segmentRepo := repository.NewRoadSegmentRepository(db)
	defectRepo := repository.NewDefectRepository(db)
	priorityRepo := repository.NewPriorityRepository(db)

	// Services
	matcher := matching.NewMatcher(segmentRepo)
	georefService := service.NewGeorefService(matcher, defectRepo, cfg.DistanceThreshold, cfg.MaxNearbyRadius)
	priorityService := service.NewPriorityService(priorityRepo, defectRepo, segmentRepo, cfg.Scoring)
	segmentService := service.NewSegmentService(segmentRepo)

	// Handlers
	georefHandler := handler.NewGeorefHandler(georefService)
	priorityHandler := handler.NewPriorityHandler(priorityService)
	segmentHandler := handler.NewSegmentHandler(segmentService)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "RoadCare API is running",
		})
	})

	auth := middleware.Auth(cfg.JWTSecret)

	// API 路由组
	api := r.Group("/api/v1")
	{
		georef := api.Group("/georef")
		{
			georef.POST("", auth, georefHandler.Georeference)
			georef.POST("/batch", auth, georefHandler.BatchGeoreference)
			georef.POST("/nearby", georefHandler.Nearby)
			georef.GET("/statistics", georefHandler.Statistics)
			georef.GET("/segment/:id", georefHandler.SegmentDefects)
		}

		priority := api.Group("/priority")
		{
			priority.POST("/compute", auth, priorityHandler.Compute)
			priority.POST("/recompute", auth, priorityHandler.Recompute)
			priority.GET("/list", priorityHandler.List)
			priority.GET("/segment/:id", priorityHandler.SegmentPriority)
			priority.GET("/statistics", priorityHandler.Statistics)
		}

		segments := api.Group("/segments")
		{
			segments.GET("", segmentHandler.GetSegments)
			segments.GET("/:id", segmentHandler.GetSegmentByID)
		}
	}

	return r
}
