// Package main API 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"novel-forge-api/internal/application/publish"
	"novel-forge-api/internal/application/story"
	"novel-forge-api/internal/config"
	"novel-forge-api/internal/infrastructure/browser"
	"novel-forge-api/internal/infrastructure/llm"
	"novel-forge-api/internal/infrastructure/persistence/redis"
	"novel-forge-api/internal/infrastructure/ratelimit"
	"novel-forge-api/internal/interfaces/http/handler"
	"novel-forge-api/internal/interfaces/http/router"
	einoobs "novel-forge-api/internal/observability/eino"
	"novel-forge-api/internal/workflow/prompt"
	"novel-forge-api/pkg/logger"
	"novel-forge-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-server",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 初始化 Eino 全局 callbacks（Token 指标/追踪）
	einoobs.Init()

	// Redis 为可选缓存，连接失败时降级为无缓存运行
	var redisClient *redis.Client
	var genCache llm.ResponseCache
	if cfg.Cache.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			log.Warn("redis unavailable, generation cache disabled", "error", err)
		} else {
			defer func() { _ = redisClient.Close() }()
			genCache = redis.NewGenCache(redisClient, cfg.LLM.CacheTTL)
		}
	}

	// 上游模型
	factory := llm.NewFactory(&cfg.LLM)
	catalog := llm.NewCatalog(&cfg.LLM, factory)
	generator := llm.NewGenerator(&cfg.LLM, factory, catalog, genCache)

	// 生成管线
	sensitiveWords, err := story.LoadSensitiveWords(cfg.Audit.SensitiveWordsPath)
	if err != nil {
		log.Error("failed to load sensitive words", "error", err)
		os.Exit(1)
	}
	registry := prompt.NewRegistry()
	builder := prompt.NewBuilder(registry, cfg.Generation)
	auditor := story.NewAuditor(sensitiveWords)
	stats := story.NewStats()
	orchestrator := story.NewOrchestrator(builder, generator, auditor, catalog, cfg.Generation, stats)

	// 发布调度
	bridge := browser.NewBridge(cfg.Publish.BridgeEndpoint, cfg.Publish.Timeout)
	store := publish.NewStore()
	scheduler := publish.NewScheduler(store, bridge, cfg.Publish)

	schedCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	go scheduler.Run(schedCtx)

	// 限流
	limiter := ratelimit.NewMemoryLimiter()

	// 路由
	r := router.New(cfg, router.Handlers{
		Health:    handler.NewHealthHandler(redisClient),
		Novel:     handler.NewNovelHandler(orchestrator),
		Models:    handler.NewModelsHandler(catalog, cfg.LLM.DefaultProvider),
		Publish:   handler.NewPublishHandler(bridge, scheduler, store, cfg.Publish),
		Dashboard: handler.NewDashboardHandler(stats, store),
	}, limiter)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 启动服务器
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// 先停调度循环，再优雅关闭 HTTP
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
