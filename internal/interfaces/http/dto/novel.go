package dto

import "novel-forge-api/internal/domain/entity"

// GenerateNovelRequest 小说生成请求
type GenerateNovelRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Mode   string `json:"mode"`
	// Model 形如 provider::model 或 provider::model@api_base
	Model string `json:"model"`
	Genre string `json:"genre"`
	// StyleStrength low / medium / high
	StyleStrength string `json:"style_strength"`

	RoleCards       []string `json:"role_cards"`
	OrgCards        []string `json:"org_cards"`
	Professions     []string `json:"professions"`
	Foreshadows     []string `json:"foreshadows"`
	WorkflowAnswers []string `json:"workflow_answers"`

	PriorText     string `json:"prior_text"`
	ChapterIndex  int    `json:"chapter_index"`
	NovelTitle    string `json:"novel_title"`
	ChapterTitle  string `json:"chapter_title"`
	AnalysisNotes string `json:"analysis_notes"`
	TargetWords   int    `json:"target_words"`
}

// ToEntity 转为领域请求
func (r *GenerateNovelRequest) ToEntity(mode entity.Mode) *entity.GenerationRequest {
	return &entity.GenerationRequest{
		Mode:            mode,
		Prompt:          r.Prompt,
		ModelSelector:   r.Model,
		Genre:           r.Genre,
		StyleStrength:   r.StyleStrength,
		RoleCards:       r.RoleCards,
		OrgCards:        r.OrgCards,
		Professions:     r.Professions,
		Foreshadows:     r.Foreshadows,
		WorkflowAnswers: r.WorkflowAnswers,
		PriorText:       r.PriorText,
		ChapterIndex:    r.ChapterIndex,
		NovelTitle:      r.NovelTitle,
		ChapterTitle:    r.ChapterTitle,
		AnalysisNotes:   r.AnalysisNotes,
		TargetWords:     r.TargetWords,
	}
}

// GenerateNovelResponse 小说生成响应
type GenerateNovelResponse struct {
	Title         string               `json:"title"`
	Mode          string               `json:"mode"`
	ModelUID      string               `json:"model_uid"`
	Chapters      []entity.Chapter     `json:"chapters"`
	QualityReport entity.QualityReport `json:"quality_report"`
	RepairRounds  int                  `json:"repair_rounds"`
	ExpandRounds  int                  `json:"expand_rounds"`
}

// NewGenerateNovelResponse 由领域结果构建响应
func NewGenerateNovelResponse(r *entity.NovelResult) *GenerateNovelResponse {
	return &GenerateNovelResponse{
		Title:         r.Title,
		Mode:          string(r.Mode),
		ModelUID:      r.ModelUID,
		Chapters:      r.Chapters,
		QualityReport: r.Report,
		RepairRounds:  r.RepairRounds,
		ExpandRounds:  r.ExpandRounds,
	}
}

// ModelListResponse 模型目录响应
type ModelListResponse struct {
	Default string            `json:"default"`
	Models  []ModelDescriptor `json:"models"`
}

// ModelDescriptor 模型描述
type ModelDescriptor struct {
	UID         string `json:"uid"`
	Provider    string `json:"provider"`
	ID          string `json:"id"`
	APIBase     string `json:"api_base,omitempty"`
	Description string `json:"description,omitempty"`
}

// WorkflowQuestionsResponse 创作5问清单
type WorkflowQuestionsResponse struct {
	Questions []WorkflowQuestion `json:"questions"`
}

// WorkflowQuestion 单个确认问题
type WorkflowQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Hint     string `json:"hint"`
}
