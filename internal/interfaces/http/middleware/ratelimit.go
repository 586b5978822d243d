// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "novel-forge-api/pkg/errors"
	"novel-forge-api/pkg/metrics"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool
	// RequestsPerMinute 每键每分钟允许的请求数
	RequestsPerMinute int
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 限流中间件
//
// 限流键 = 调用方标识 + 路由；窗口固定 60 秒。
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}

	return func(c *gin.Context) {
		operation := c.FullPath()
		if operation == "" {
			operation = c.Request.URL.Path
		}
		key := clientKey(c) + ":" + operation

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.RequestsPerMinute, time.Minute)
		if err != nil {
			// 限流器故障时放行，避免影响业务
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimitRejectedTotal.WithLabelValues(operation).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":     apperrors.CodeTooManyRequests,
				"message":  "请求过于频繁，请稍后再试",
				"trace_id": c.GetString("trace_id"),
			})
			return
		}

		c.Next()
	}
}

// clientKey 提取调用方标识：优先 API Key，退回客户端 IP
func clientKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	return c.ClientIP()
}
