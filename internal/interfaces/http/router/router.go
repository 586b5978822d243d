// Package router 提供 HTTP 路由配置
package router

import (
	"novel-forge-api/internal/config"
	"novel-forge-api/internal/interfaces/http/handler"
	"novel-forge-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Health    *handler.HealthHandler
	Novel     *handler.NovelHandler
	Models    *handler.ModelsHandler
	Publish   *handler.PublishHandler
	Dashboard *handler.DashboardHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API v1 路由组，业务端点统一限流
	v1 := r.engine.Group("/v1")
	v1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerMinute: r.cfg.Security.RateLimit.RequestsPerMinute,
	}, r.limiter))
	{
		// 生成相关路由
		novels := v1.Group("/novels")
		{
			novels.POST("/generate", r.handlers.Novel.Generate)
		}
		v1.GET("/workflow/questions", r.handlers.Novel.WorkflowQuestions)

		// 模型目录路由
		models := v1.Group("/models")
		{
			models.GET("", r.handlers.Models.List)
			models.GET("/check", r.handlers.Models.Check)
		}

		// 发布相关路由
		pub := v1.Group("/publish")
		{
			pub.POST("", r.handlers.Publish.PublishNow)
			pub.POST("/queue", r.handlers.Publish.Enqueue)
			pub.GET("/queue", r.handlers.Publish.Queue)
			pub.GET("/probe", r.handlers.Publish.Probe)
		}

		// 运行面板
		v1.GET("/dashboard", r.handlers.Dashboard.Dashboard)
	}
}
