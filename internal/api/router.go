package api

import (
	"errors"
	"time"

	"parfum-formulator/internal/api/handlers/formula"
	"parfum-formulator/internal/api/handlers/health"
	"parfum-formulator/internal/api/handlers/library"
	"parfum-formulator/internal/api/handlers/notes"
	"parfum-formulator/internal/api/middleware"
	"parfum-formulator/internal/core/cache"
	coreFormula "parfum-formulator/internal/core/formula"
	coreLibrary "parfum-formulator/internal/core/library"
	"parfum-formulator/internal/infrastructure/config"
	"parfum-formulator/internal/infrastructure/metrics"
	"parfum-formulator/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務；Cache 與 Metrics 可為 nil
type Dependencies struct {
	Formula *coreFormula.Service
	Library *coreLibrary.Service
	Cache   *cache.CacheManager
	Metrics *metrics.Metrics
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Formula == nil || deps.Library == nil {
		return nil, errors.New("formula and library services are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, deps.Formula.Resolver(), deps.Cache, deps.Library)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		notes.NewHandler(deps.Formula, deps.Library).Register(api.Group("/notes"))
		formula.NewHandler(deps.Formula).Register(api.Group("/formula"))

		libraryHandler := library.NewHandler(deps.Library, deps.Formula)
		libraryHandler.Register(api.Group("/library"), middleware.Deduplication(cfg.DedupWindow))
		libraryHandler.RegisterDrafts(api.Group("/drafts"))
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Bool("metrics_enabled", deps.Metrics != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
