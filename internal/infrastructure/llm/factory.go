package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
)

// Factory 管理多个 Eino ChatModel 客户端实例
//
// 以 模型UID@api_base 为键缓存，支持同一提供商下的自定义接入点。
type Factory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewFactory 创建 Eino LLM 工厂
func NewFactory(cfg *config.LLMConfig) *Factory {
	return &Factory{
		config: cfg,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取描述对应的 ChatModel，惰性创建并缓存
func (f *Factory) Get(ctx context.Context, d entity.ModelDescriptor) (model.BaseChatModel, error) {
	key := d.UID() + "@" + d.APIBase

	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[key]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[d.Provider]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", d.Provider)
	}

	baseURL := d.APIBase
	if baseURL == "" {
		baseURL = providerCfg.BaseURL
	}
	modelID := d.ID
	if modelID == "" {
		modelID = providerCfg.Model
	}

	// 使用 Eino 的 OpenAI 适配器
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      providerCfg.APIKey,
		BaseURL:     baseURL,
		Model:       modelID,
		MaxTokens:   &providerCfg.MaxTokens,
		Temperature: ptrFloat32(float32(providerCfg.Temperature)),
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", key, err)
	}

	f.models[key] = chatModel
	return chatModel, nil
}

func ptrFloat32(f float32) *float32 {
	return &f
}
