// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Generation    GenerationConfig    `yaml:"generation" mapstructure:"generation"`
	Audit         AuditConfig         `yaml:"audit" mapstructure:"audit"`
	Publish       PublishConfig       `yaml:"publish" mapstructure:"publish"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`

	// MaxConcurrent 进程内上游调用并发上限
	MaxConcurrent int64 `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// MaxRetries 上游瞬时错误的内部重试次数
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// CacheTTL 生成结果缓存时长（仅在 Redis 可用时生效）
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	TopP        float64       `yaml:"top_p" mapstructure:"top_p"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Description string        `yaml:"description" mapstructure:"description"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// GenerationConfig 生成管线配置
//
// 短章阈值与修复比例均为经验值，保留为可配置项而非常量。
type GenerationConfig struct {
	MinPromptLength int `yaml:"min_prompt_length" mapstructure:"min_prompt_length"`
	MaxPromptLength int `yaml:"max_prompt_length" mapstructure:"max_prompt_length"`

	// MinWords / MaxWords 单章目标字数区间（净字数）
	MinWords int `yaml:"min_words" mapstructure:"min_words"`
	MaxWords int `yaml:"max_words" mapstructure:"max_words"`

	// ShortChapterFloor 大纲检测中“短章”判定下限（与 MinWords*ShortChapterRatio 取较大值）
	ShortChapterFloor int     `yaml:"short_chapter_floor" mapstructure:"short_chapter_floor"`
	ShortChapterRatio float64 `yaml:"short_chapter_ratio" mapstructure:"short_chapter_ratio"`

	// OutlineMinChapters / OutlineShortShare / OutlineMinShort 大纲形态判定参数
	OutlineMinChapters int     `yaml:"outline_min_chapters" mapstructure:"outline_min_chapters"`
	OutlineShortShare  float64 `yaml:"outline_short_share" mapstructure:"outline_short_share"`
	OutlineMinShort    int     `yaml:"outline_min_short" mapstructure:"outline_min_short"`

	// ExpandTriggerRatio 章节净字数低于 MinWords*比例 时触发自动扩写
	ExpandTriggerRatio float64 `yaml:"expand_trigger_ratio" mapstructure:"expand_trigger_ratio"`
	// MaxExpandRounds 单章最多扩写轮数
	MaxExpandRounds int `yaml:"max_expand_rounds" mapstructure:"max_expand_rounds"`

	// FinalGateFloor / FinalGateRatio 终审下限（取较大值），低于则整体拒绝
	FinalGateFloor int     `yaml:"final_gate_floor" mapstructure:"final_gate_floor"`
	FinalGateRatio float64 `yaml:"final_gate_ratio" mapstructure:"final_gate_ratio"`

	// ContinueFloor / ContinueFloorRatio 续写结果的最低净字数（取较大值）
	ContinueFloor      int     `yaml:"continue_floor" mapstructure:"continue_floor"`
	ContinueFloorRatio float64 `yaml:"continue_floor_ratio" mapstructure:"continue_floor_ratio"`

	// PriorWindowRunes 续写时嵌入的前文尾部窗口大小（按 rune 计）
	PriorWindowRunes int `yaml:"prior_window_runes" mapstructure:"prior_window_runes"`
}

// ShortChapterThreshold 计算短章阈值
func (g GenerationConfig) ShortChapterThreshold() int {
	return maxInt(g.ShortChapterFloor, int(float64(g.MinWords)*g.ShortChapterRatio))
}

// ContinueThreshold 计算续写结果的最低净字数
func (g GenerationConfig) ContinueThreshold() int {
	return maxInt(g.ContinueFloor, int(float64(g.MinWords)*g.ContinueFloorRatio))
}

// FinalGateThreshold 计算终审最低净字数
func (g GenerationConfig) FinalGateThreshold() int {
	return maxInt(g.FinalGateFloor, int(float64(g.MinWords)*g.FinalGateRatio))
}

// ExpandThreshold 计算自动扩写触发净字数
func (g GenerationConfig) ExpandThreshold() int {
	return int(float64(g.MinWords) * g.ExpandTriggerRatio)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// AuditConfig 质量审计配置
type AuditConfig struct {
	// SensitiveWordsPath 敏感词表路径，文件缺失时视为空表
	SensitiveWordsPath string `yaml:"sensitive_words_path" mapstructure:"sensitive_words_path"`
}

// PublishConfig 发布调度配置
type PublishConfig struct {
	// PollInterval 调度循环轮询间隔
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// MaxRetries 单个任务的默认最大重试次数
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// RetryDelay 默认重试等待时长（秒粒度）
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	// Timeout 单次发布操作超时
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// ProbeTimeout 浏览器端点探测超时
	ProbeTimeout time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`
	// BridgeEndpoint 浏览器自动化桥接服务地址
	BridgeEndpoint string `yaml:"bridge_endpoint" mapstructure:"bridge_endpoint"`
	// CDPURL 默认 Chrome DevTools 端点（任务可覆盖）
	CDPURL string `yaml:"cdp_url" mapstructure:"cdp_url"`
	// CreateURL 默认章节创建页地址（任务可覆盖）
	CreateURL string `yaml:"create_url" mapstructure:"create_url"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// RequestsPerMinute 每键每分钟允许的请求数
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}
