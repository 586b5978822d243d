package llm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
	"novel-forge-api/internal/domain/port"
	apperrors "novel-forge-api/pkg/errors"
	"novel-forge-api/pkg/logger"
	"novel-forge-api/pkg/metrics"
)

// ResponseCache 生成结果缓存，可选注入
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// Generator 上游生成器实现
//
// 并发上限由信号量控制；瞬时错误做指数退避重试；
// 超时归类为 UpstreamTimeout，其余归类为 UpstreamError。
type Generator struct {
	cfg     *config.LLMConfig
	factory *Factory
	catalog *Catalog

	sem   *semaphore.Weighted
	cache ResponseCache
	group singleflight.Group
}

var _ port.Generator = (*Generator)(nil)

// NewGenerator 创建生成器，cache 可为 nil
func NewGenerator(cfg *config.LLMConfig, factory *Factory, catalog *Catalog, cache ResponseCache) *Generator {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Generator{
		cfg:     cfg,
		factory: factory,
		catalog: catalog,
		sem:     semaphore.NewWeighted(maxConcurrent),
		cache:   cache,
	}
}

// Generate 发起一次对话补全
func (g *Generator) Generate(ctx context.Context, messages []*schema.Message, opts port.GenerateOptions) (string, error) {
	descriptor, err := g.catalog.Resolve(opts.ModelSelector)
	if err != nil {
		return "", err
	}

	key := cacheKey(descriptor.UID(), messages)
	if g.cache != nil {
		if text, ok := g.cache.Get(ctx, key); ok {
			logger.Debug(ctx, "generation cache hit", "model", descriptor.UID())
			return text, nil
		}
	}

	// singleflight 合并同键并发请求
	result, err, _ := g.group.Do(key, func() (interface{}, error) {
		text, err := g.callWithRetry(ctx, descriptor, messages)
		if err != nil {
			return nil, err
		}
		if g.cache != nil {
			g.cache.Set(ctx, key, text)
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (g *Generator) callWithRetry(ctx context.Context, d entity.ModelDescriptor, messages []*schema.Message) (string, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", apperrors.ErrUpstreamError.WithError(err)
	}
	defer g.sem.Release(1)

	maxRetries := g.cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// 指数退避，上限 8s
			delay := time.Duration(1<<uint(attempt-1)) * time.Second
			if delay > 8*time.Second {
				delay = 8 * time.Second
			}
			select {
			case <-ctx.Done():
				return "", classify(ctx.Err(), d.Provider)
			case <-time.After(delay):
			}
		}

		text, err := g.callOnce(ctx, d, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			break
		}
		logger.Warn(ctx, "upstream call failed, will retry",
			"provider", d.Provider, "attempt", attempt+1, "error", err)
	}
	return "", classify(lastErr, d.Provider)
}

func (g *Generator) callOnce(ctx context.Context, d entity.ModelDescriptor, messages []*schema.Message) (string, error) {
	m, err := g.factory.Get(ctx, d)
	if err != nil {
		return "", err
	}

	timeout := g.providerTimeout(d.Provider)
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := m.Generate(callCtx, messages)
	metrics.UpstreamCallDuration.WithLabelValues(d.Provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(d.Provider, "error").Inc()
		return "", err
	}
	metrics.UpstreamCallsTotal.WithLabelValues(d.Provider, "success").Inc()

	text := strings.TrimSpace(out.Content)
	if text == "" {
		return "", fmt.Errorf("empty completion from provider %s", d.Provider)
	}
	return text, nil
}

func (g *Generator) providerTimeout(provider string) time.Duration {
	if p, ok := g.cfg.Providers[provider]; ok {
		return p.Timeout
	}
	return 0
}

// classify 将上游错误映射为应用错误码，超时不降级
func classify(err error, provider string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrUpstreamTimeout.WithDetail("provider " + provider + " timed out").WithError(err)
	}
	return apperrors.ErrUpstreamError.WithDetail("provider " + provider + " failed").WithError(err)
}

func cacheKey(modelUID string, messages []*schema.Message) string {
	h := md5.New()
	h.Write([]byte(modelUID))
	for _, m := range messages {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	return "gen:" + hex.EncodeToString(h.Sum(nil))
}
