package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-forge-api/internal/config"
	apperrors "novel-forge-api/pkg/errors"
)

func testLLMConfig() *config.LLMConfig {
	return &config.LLMConfig{
		DefaultProvider: "openrouter",
		Providers: map[string]config.ProviderConfig{
			"openrouter": {
				BaseURL:     "https://openrouter.ai/api/v1",
				Model:       "deepseek/deepseek-chat",
				Description: "默认",
			},
			"deepseek": {
				BaseURL: "https://api.deepseek.com/v1",
				Model:   "deepseek-chat",
			},
		},
	}
}

func TestCatalog_Resolve(t *testing.T) {
	catalog := NewCatalog(testLLMConfig(), nil)

	tests := []struct {
		name         string
		selector     string
		wantProvider string
		wantID       string
		wantAPIBase  string
	}{
		{
			"空串用默认提供商",
			"",
			"openrouter", "deepseek/deepseek-chat", "https://openrouter.ai/api/v1",
		},
		{
			"显式选择",
			"deepseek::deepseek-chat",
			"deepseek", "deepseek-chat", "https://api.deepseek.com/v1",
		},
		{
			"覆盖接入点",
			"deepseek::deepseek-chat@https://proxy.internal/v1",
			"deepseek", "deepseek-chat", "https://proxy.internal/v1",
		},
		{
			"模型名含路径分隔",
			"openrouter::org/model:free",
			"openrouter", "org/model:free", "https://openrouter.ai/api/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := catalog.Resolve(tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, d.Provider)
			assert.Equal(t, tt.wantID, d.ID)
			assert.Equal(t, tt.wantAPIBase, d.APIBase)
		})
	}
}

func TestCatalog_ResolveErrors(t *testing.T) {
	catalog := NewCatalog(testLLMConfig(), nil)

	tests := []struct {
		name     string
		selector string
	}{
		{"缺少分隔符", "deepseek-chat"},
		{"空提供商", "::deepseek-chat"},
		{"空模型名", "deepseek::"},
		{"未知提供商", "nonexistent::model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Resolve(tt.selector)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
		})
	}
}

func TestCatalog_ResolveMisconfiguredDefault(t *testing.T) {
	cfg := testLLMConfig()
	cfg.DefaultProvider = "missing"
	catalog := NewCatalog(cfg, nil)

	_, err := catalog.Resolve("")

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInternalError))
}

func TestCatalog_ListSorted(t *testing.T) {
	catalog := NewCatalog(testLLMConfig(), nil)

	list := catalog.List()

	require.Len(t, list, 2)
	assert.Equal(t, "deepseek::deepseek-chat", list[0].UID())
	assert.Equal(t, "openrouter::deepseek/deepseek-chat", list[1].UID())
}
