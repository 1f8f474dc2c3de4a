package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/auth"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/logger"
	"github.com/polarisaistudio/tenant-prediction/internal/interfaces/http/handler"
	"github.com/polarisaistudio/tenant-prediction/internal/interfaces/http/middleware"
)

// Config wires handlers and cross-cutting options into a router.
type Config struct {
	Logger           *zap.Logger
	JWTService       *auth.JWTService
	AuthEnabled      bool
	TracingEnabled   bool
	ServiceName      string
	SystemHandler    *handler.SystemHandler
	RiskHandler      *handler.RiskHandler
	RetentionHandler *handler.RetentionHandler
	LeaseHandler     *handler.LeaseHandler
}

// New builds the gin engine with all middleware and routes registered.
func New(cfg Config) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.CORS())
	if cfg.TracingEnabled {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}

	engine.GET("/health", cfg.SystemHandler.Health)
	engine.GET("/health/ready", cfg.SystemHandler.Ready)

	api := engine.Group("/api/v1")
	if cfg.AuthEnabled {
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTService, middleware.JWTAuthConfig{}))
	}

	risk := api.Group("/risk")
	{
		risk.POST("/scan", cfg.RiskHandler.Scan)
		risk.POST("/leases/:id/score", cfg.RiskHandler.ScoreLease)
		risk.GET("/leases/:id/prediction", cfg.RiskHandler.GetPrediction)
		risk.GET("/leases/:id/predictions", cfg.RiskHandler.GetPredictionHistory)
	}

	retention := api.Group("/retention")
	{
		retention.POST("/leases/:id/workflow", cfg.RetentionHandler.StartWorkflow)
		retention.GET("/workflows/:id", cfg.RetentionHandler.GetWorkflowRun)
		retention.GET("/metrics", cfg.RetentionHandler.GetMetrics)
		retention.GET("/roi", cfg.RetentionHandler.GetROI)
	}

	leases := api.Group("/leases")
	{
		leases.GET("", cfg.LeaseHandler.ListLeases)
		leases.GET("/:id", cfg.LeaseHandler.GetLease)
		leases.POST("/:id/renew", cfg.LeaseHandler.RenewLease)
		leases.POST("/:id/terminate", cfg.LeaseHandler.TerminateLease)
	}

	return engine
}
