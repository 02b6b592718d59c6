package app

import (
	"k12_curriculum_backend/docs"
	"k12_curriculum_backend/internal/config"
	"k12_curriculum_backend/internal/middleware"
	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)

		// Coverage reads are consumed by dashboards and never require auth.
		public.GET("/coverage", c.coverage.GetCoverage)
		public.GET("/coverage/summary", c.coverage.GetSummary)
		public.GET("/coverage/ready", c.coverage.IsReady)
		public.POST("/coverage/modules/filter", c.coverage.FilterModules)

		public.GET("/modules/:id/assets", c.asset.ListByModule)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/coverage/refresh", c.coverage.Refresh)
		admin.POST("/gapfill", c.coverage.RunGapFill)
		admin.POST("/assets/upload", c.asset.Upload)
		admin.POST("/assets/link", c.asset.AddLink)
	}
}
