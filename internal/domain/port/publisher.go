package port

import (
	"context"
	"time"
)

// PublishRequest 单次章节发布请求
type PublishRequest struct {
	CDPURL    string
	CreateURL string
	Title     string
	Content   string
	// Selectors 页面选择器覆盖，空表使用内置默认
	Selectors map[string]string
	Timeout   time.Duration
	// DryRun 只做页面定位，不提交
	DryRun bool
}

// PublishResult 发布执行结果
type PublishResult struct {
	Success    bool
	Detail     string
	URL        string
	Screenshot string
}

// ProbeResult 浏览器端点探测结果
type ProbeResult struct {
	Success        bool
	Detail         string
	ReachablePages []string
}

// Publisher 章节发布端口，由浏览器自动化实现
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
	// Probe 探测 DevTools 端点连通性
	Probe(ctx context.Context, endpoint string, timeout time.Duration) (*ProbeResult, error)
}
