package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"legacy-migrator/api/handlers"
	"legacy-migrator/api/middleware"
	"legacy-migrator/config"
	"legacy-migrator/services"
)

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Server            config.ServerConfig
	DefaultChunkLimit int
	Health            HealthCheck
}

func New(svc *services.MigrationService, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogging(), middleware.CORS(opts.Server.CORSOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if opts.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := opts.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1/migration", middleware.AdminToken(opts.Server.AdminToken))
	{
		api.GET("/dashboard", handlers.DashboardHandler(svc))
		api.POST("/runs/bulk", handlers.RunBulkHandler(svc))
		api.POST("/runs/chunk", handlers.RunChunkHandler(svc, opts.DefaultChunkLimit))
		api.POST("/runs/single", handlers.RunSingleHandler(svc))
		api.GET("/posts/:id/preview", handlers.PreviewHandler(svc))
		api.GET("/posts/:id/fields", handlers.SavedFieldsHandler(svc))
	}

	return r
}
