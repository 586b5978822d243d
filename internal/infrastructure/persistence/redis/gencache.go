package redis

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel-forge-api/pkg/logger"
)

var cacheTracer = otel.Tracer("redis.gencache")

// GenCache 生成结果缓存
//
// 键由调用方构造（模型UID + 消息摘要），值为上游原始文本。
// 缓存故障只记日志，不影响主流程。
type GenCache struct {
	client *Client
	ttl    time.Duration
}

// NewGenCache 创建生成结果缓存
func NewGenCache(client *Client, ttl time.Duration) *GenCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &GenCache{client: client, ttl: ttl}
}

// Get 查询缓存，未命中或出错返回 false
func (c *GenCache) Get(ctx context.Context, key string) (string, bool) {
	ctx, span := cacheTracer.Start(ctx, "gencache.Get",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err := c.client.Get(ctx, key)
	if err != nil {
		if !IsNil(err) {
			span.RecordError(err)
			logger.Warn(ctx, "generation cache read failed", "error", err)
		}
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return "", false
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return val, true
}

// Set 写入缓存，失败只记日志
func (c *GenCache) Set(ctx context.Context, key, value string) {
	ctx, span := cacheTracer.Start(ctx, "gencache.Set",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	if err := c.client.Set(ctx, key, value, c.ttl); err != nil {
		span.RecordError(err)
		logger.Warn(ctx, "generation cache write failed", "error", err)
	}
}
