// Package llm 提供上游大模型接入
package llm

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
	apperrors "novel-forge-api/pkg/errors"
)

// Catalog 配置驱动的模型目录
type Catalog struct {
	cfg     *config.LLMConfig
	factory *Factory
}

func NewCatalog(cfg *config.LLMConfig, factory *Factory) *Catalog {
	return &Catalog{cfg: cfg, factory: factory}
}

// List 返回全部可用模型，按 UID 排序
func (c *Catalog) List() []entity.ModelDescriptor {
	out := make([]entity.ModelDescriptor, 0, len(c.cfg.Providers))
	for name, p := range c.cfg.Providers {
		out = append(out, entity.ModelDescriptor{
			Provider:    name,
			ID:          p.Model,
			APIBase:     p.BaseURL,
			Description: p.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID() < out[j].UID() })
	return out
}

// Resolve 解析模型选择串
//
// 形如 provider::model 或 provider::model@api_base；空串返回默认提供商的模型。
// 格式错误或提供商未配置时返回参数错误。
func (c *Catalog) Resolve(selector string) (entity.ModelDescriptor, error) {
	if strings.TrimSpace(selector) == "" {
		name := c.cfg.DefaultProvider
		p, ok := c.cfg.Providers[name]
		if !ok {
			return entity.ModelDescriptor{}, apperrors.ErrInternalError.WithDetail("default provider is not configured: " + name)
		}
		return entity.ModelDescriptor{Provider: name, ID: p.Model, APIBase: p.BaseURL, Description: p.Description}, nil
	}

	base := selector
	apiBase := ""
	if at := strings.LastIndex(selector, "@"); at >= 0 {
		base, apiBase = selector[:at], selector[at+1:]
	}

	parts := strings.SplitN(base, "::", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return entity.ModelDescriptor{}, apperrors.ErrInvalidParam.WithDetail("malformed model selector: " + selector)
	}

	provider, modelID := parts[0], parts[1]
	p, ok := c.cfg.Providers[provider]
	if !ok {
		return entity.ModelDescriptor{}, apperrors.ErrInvalidParam.WithDetail("unknown provider: " + provider)
	}
	if apiBase == "" {
		apiBase = p.BaseURL
	}
	return entity.ModelDescriptor{Provider: provider, ID: modelID, APIBase: apiBase, Description: p.Description}, nil
}

// Check 对目录内每个模型做一次最小对话探活
func (c *Catalog) Check(ctx context.Context) []entity.ModelCheckResult {
	descriptors := c.List()
	results := make([]entity.ModelCheckResult, 0, len(descriptors))

	probe := []*schema.Message{schema.UserMessage("ping")}
	for _, d := range descriptors {
		start := time.Now()
		r := entity.ModelCheckResult{UID: d.UID()}

		m, err := c.factory.Get(ctx, d)
		if err == nil {
			_, err = m.Generate(ctx, probe)
		}
		r.LatencyMS = time.Since(start).Milliseconds()
		if err != nil {
			r.Detail = err.Error()
		} else {
			r.Available = true
		}
		results = append(results, r)
	}
	return results
}
