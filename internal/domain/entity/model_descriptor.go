package entity

import "fmt"

// ModelDescriptor 可用模型描述
type ModelDescriptor struct {
	// Provider 提供商名（配置中的 providers 键）
	Provider string `json:"provider"`
	// ID 提供商侧的模型标识
	ID string `json:"id"`
	// APIBase 自定义接入点，空值使用提供商默认
	APIBase string `json:"api_base,omitempty"`
	// Description 供前端展示的说明
	Description string `json:"description,omitempty"`
}

// UID 模型唯一标识，形如 provider::id
func (d ModelDescriptor) UID() string {
	return fmt.Sprintf("%s::%s", d.Provider, d.ID)
}

// ModelCheckResult 模型连通性检查结果
type ModelCheckResult struct {
	UID       string `json:"uid"`
	Available bool   `json:"available"`
	LatencyMS int64  `json:"latency_ms"`
	Detail    string `json:"detail,omitempty"`
}
