package entity

// Chapter 章节
type Chapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GenerationRequest 生成请求（领域形态，已通过入参校验）
type GenerationRequest struct {
	Mode   Mode   `json:"mode"`
	Prompt string `json:"prompt"`

	// ModelSelector 形如 provider::model 或 provider::model@api_base，空值使用默认模型
	ModelSelector string `json:"model_selector,omitempty"`

	// Genre 题材（用于提示词构建，可为空）
	Genre string `json:"genre,omitempty"`
	// StyleStrength 风格锁定强度：low / medium / high，空值视为 medium
	StyleStrength string `json:"style_strength,omitempty"`

	// 世界观卡片，逐项拼入提示词
	RoleCards       []string `json:"role_cards,omitempty"`
	OrgCards        []string `json:"org_cards,omitempty"`
	Professions     []string `json:"professions,omitempty"`
	Foreshadows     []string `json:"foreshadows,omitempty"`
	WorkflowAnswers []string `json:"workflow_answers,omitempty"`

	// PriorText 续写模式的前文全文（仅尾部窗口进入提示词）
	PriorText string `json:"prior_text,omitempty"`
	// ChapterIndex 续写目标章节序号（从 1 开始，0 表示自动推断）
	ChapterIndex int `json:"chapter_index,omitempty"`
	// NovelTitle 续写模式的作品标题
	NovelTitle string `json:"novel_title,omitempty"`
	// ChapterTitle 补写模式的目标章节标题
	ChapterTitle string `json:"chapter_title,omitempty"`
	// AnalysisNotes 重写模式的分析建议
	AnalysisNotes string `json:"analysis_notes,omitempty"`

	// TargetWords 单章目标字数，0 使用配置默认
	TargetWords int `json:"target_words,omitempty"`
}

// SensitiveSuggestion 敏感词替换建议
type SensitiveSuggestion struct {
	Word        string `json:"word"`
	ReplaceWith string `json:"replace_with"`
}

// ChapterAudit 单章质量审计结果
type ChapterAudit struct {
	Title                string                `json:"title"`
	WordCountNet         int                   `json:"word_count_net"`
	SensitiveHits        []string              `json:"sensitive_hits"`
	SensitiveSuggestions []SensitiveSuggestion `json:"sensitive_suggestions"`
	ReadabilityScore     int                   `json:"readability_score"`
	CoherenceScore       int                   `json:"coherence_score"`
	HookOK               bool                  `json:"hook_ok"`
	HookReason           string                `json:"hook_reason"`
}

// QualitySummary 整本审计汇总
type QualitySummary struct {
	ChapterCount       int     `json:"chapter_count"`
	AvgReadability     float64 `json:"avg_readability"`
	AvgCoherence       float64 `json:"avg_coherence"`
	HookRate           float64 `json:"hook_rate"`
	SensitiveHitCount  int     `json:"sensitive_hit_count"`
	SensitiveWordCount int     `json:"sensitive_word_count"`
}

// QualityReport 质量审计报告
type QualityReport struct {
	Summary  QualitySummary `json:"summary"`
	Chapters []ChapterAudit `json:"chapters"`
}

// NovelResult 生成管线的最终产出
type NovelResult struct {
	Title    string        `json:"title"`
	Mode     Mode          `json:"mode"`
	ModelUID string        `json:"model_uid"`
	Chapters []Chapter     `json:"chapters"`
	Report   QualityReport `json:"report"`

	// RepairRounds 大纲修复执行的轮数
	RepairRounds int `json:"repair_rounds"`
	// ExpandRounds 自动扩写累计执行的轮数
	ExpandRounds int `json:"expand_rounds"`
}

// TotalWordsNet 全书净字数
func (r *NovelResult) TotalWordsNet() int {
	total := 0
	for _, a := range r.Report.Chapters {
		total += a.WordCountNet
	}
	return total
}
