package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dcu-portal-api/api/swagger"
	"github.com/noah-isme/dcu-portal-api/internal/handler"
	"github.com/noah-isme/dcu-portal-api/internal/middleware"
	"github.com/noah-isme/dcu-portal-api/internal/service"
	"github.com/noah-isme/dcu-portal-api/pkg/config"
	"github.com/noah-isme/dcu-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dcu-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dcu-portal-api/pkg/middleware/requestid"
)

type routes struct {
	clubs    *handler.ClubHandler
	sessions *handler.SessionHandler
	theme    *handler.ThemeHandler
	metrics  *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes, metricsSvc *service.MetricsService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	clubs := api.Group("/clubs")
	clubs.GET("", h.clubs.List)
	clubs.GET("/popular", h.clubs.Popular)
	clubs.GET("/stats", h.clubs.Stats)
	clubs.GET("/export", h.clubs.Export)
	clubs.GET("/:id", h.clubs.Get)
	clubs.POST("/:id/join", h.clubs.Join)

	sessions := api.Group("/directory/sessions")
	sessions.POST("", h.sessions.Create)
	sessions.GET("/:id", h.sessions.Get)
	sessions.POST("/:id/intents", h.sessions.Intent)
	sessions.GET("/:id/events", h.sessions.Events)
	sessions.DELETE("/:id", h.sessions.Delete)

	theme := api.Group("/preferences/theme")
	theme.GET("", h.theme.Get)
	theme.PUT("", h.theme.Set)
	theme.POST("/toggle", h.theme.Toggle)
	theme.DELETE("", h.theme.Reset)

	api.GET("/metrics/snapshot", h.metrics.Snapshot)

	return r
}
