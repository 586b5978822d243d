// Package port 定义领域出站端口
package port

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// GenerateOptions 单次上游调用的选项
type GenerateOptions struct {
	// ModelSelector 形如 provider::model 或 provider::model@api_base，空值使用默认模型
	ModelSelector string
	// MaxTokens / Temperature 为 0 时使用提供商配置默认值
	MaxTokens   int
	Temperature float64
}

// Generator 文本生成端口，由上游大模型实现
type Generator interface {
	// Generate 发起一次对话补全，返回原始文本
	Generate(ctx context.Context, messages []*schema.Message, opts GenerateOptions) (string, error)
}
