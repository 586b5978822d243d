package prompt

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/schema"

	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
)

// WorkflowQuestion 创作前的确认问题
type WorkflowQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Hint     string `json:"hint"`
}

// DefaultWorkflowQuestions 5问确认清单，顺序与请求中 workflow_answers 一一对应
var DefaultWorkflowQuestions = []WorkflowQuestion{
	{ID: "genre", Question: "题材与风格是什么？", Hint: "如：玄幻升级流、都市悬疑、现实言情"},
	{ID: "protagonist", Question: "主角是谁？核心身份和欲望是什么？", Hint: "如：落魄调查记者，想洗清冤案"},
	{ID: "world_conflict", Question: "世界设定与主冲突是什么？", Hint: "如：近未来城市，AI监管与地下组织对抗"},
	{ID: "tone_pace", Question: "叙事语气和节奏偏好？", Hint: "如：冷峻克制、快节奏、反转密集"},
	{ID: "length_target", Question: "篇幅目标？", Hint: "章数范围（10-50章）与单章字数范围（3000-5000字）"},
}

var chapterHeadingRe = regexp.MustCompile(`(?m)^\s*第[0-9一二三四五六七八九十百千零两]+章`)

// Builder 按生成模式构建对话消息
type Builder struct {
	registry *Registry
	gen      config.GenerationConfig
}

func NewBuilder(registry *Registry, gen config.GenerationConfig) *Builder {
	return &Builder{registry: registry, gen: gen}
}

// Build 根据请求模式选择模板并填充变量
func (b *Builder) Build(ctx context.Context, req *entity.GenerationRequest) ([]*schema.Message, error) {
	var (
		id   PromptID
		vars map[string]any
	)

	switch req.Mode {
	case entity.ModeGenerate:
		id, vars = PromptGenerateV1, b.generateVars(req)
	case entity.ModeExpand:
		id, vars = PromptExpandV1, b.expandVars(req)
	case entity.ModeContinue:
		id, vars = PromptContinueV1, b.continueVars(req)
	case entity.ModePad:
		id, vars = PromptPadV1, b.padVars(req)
	case entity.ModeInspiration:
		id, vars = PromptInspirationV1, b.inspirationVars(req)
	case entity.ModeRewrite:
		id, vars = PromptRewriteV1, b.rewriteVars(req)
	default:
		return nil, fmt.Errorf("no prompt template for mode %q", req.Mode)
	}

	tpl, err := b.registry.ChatTemplate(id)
	if err != nil {
		return nil, err
	}
	return tpl.Format(ctx, vars)
}

func (b *Builder) generateVars(req *entity.GenerationRequest) map[string]any {
	minWords, maxWords := b.wordRange(req)

	styleBlock := ""
	if req.Genre != "" {
		styleBlock = fmt.Sprintf("- 补充风格：%s\n", req.Genre)
	}

	var qna []string
	lengthTarget := ""
	for i, q := range DefaultWorkflowQuestions {
		if i >= len(req.WorkflowAnswers) {
			break
		}
		answer := strings.TrimSpace(req.WorkflowAnswers[i])
		if answer == "" {
			continue
		}
		qna = append(qna, fmt.Sprintf("- %s %s", q.Question, answer))
		if q.ID == "length_target" {
			lengthTarget = answer
		}
	}
	qnaBlock := "- 未提供完整5问信息，请根据用户提示合理补全。"
	if len(qna) > 0 {
		qnaBlock = strings.Join(qna, "\n")
	}

	chapterRule := "默认先输出1-3章完整正文，并给出后续章节规划；若用户明确给出章数目标且模型容量允许，则按用户目标执行。"
	if lengthTarget != "" {
		chapterRule = fmt.Sprintf("按用户篇幅目标执行：%s。若模型容量不足，优先保证前1-3章为完整正文，其余给章节规划。", lengthTarget)
	}

	var extra []string
	if len(req.Professions) > 0 {
		extra = append(extra, fmt.Sprintf("- 职业/等级体系：%s", strings.Join(req.Professions, "；")))
	}
	if len(req.RoleCards) > 0 {
		extra = append(extra, fmt.Sprintf("- 角色卡：%s", strings.Join(req.RoleCards, "；")))
	}
	if len(req.OrgCards) > 0 {
		extra = append(extra, fmt.Sprintf("- 组织卡：%s", strings.Join(req.OrgCards, "；")))
	}
	if len(req.Foreshadows) > 0 {
		extra = append(extra, fmt.Sprintf("- 伏笔清单：%s", strings.Join(req.Foreshadows, "；")))
	}
	extraContext := "- 无额外世界观结构数据"
	if len(extra) > 0 {
		extraContext = strings.Join(extra, "\n")
	}

	return map[string]any{
		"user_prompt":    req.Prompt,
		"style_block":    styleBlock,
		"style_strength": styleStrength(req.StyleStrength),
		"chapter_rule":   chapterRule,
		"min_words":      minWords,
		"max_words":      maxWords,
		"qna_block":      qnaBlock,
		"extra_context":  extraContext,
	}
}

func (b *Builder) expandVars(req *entity.GenerationRequest) map[string]any {
	styleLine := ""
	if req.Genre != "" {
		styleLine = fmt.Sprintf("风格参考：%s\n", req.Genre)
	}
	return map[string]any{
		"style_line":     styleLine,
		"style_strength": styleStrength(req.StyleStrength),
		"chapter_text":   req.Prompt,
	}
}

func (b *Builder) continueVars(req *entity.GenerationRequest) map[string]any {
	minWords, maxWords := b.wordRange(req)

	title := req.NovelTitle
	if title == "" {
		title = "未命名小说"
	}

	next := req.ChapterIndex
	if next <= 0 {
		next = len(chapterHeadingRe.FindAllString(req.PriorText, -1)) + 1
	}

	return map[string]any{
		"novel_title":    title,
		"genre":          orDefault(req.Genre, "沿用前文"),
		"style_strength": styleStrength(req.StyleStrength),
		"next_index":     next,
		"min_words":      minWords,
		"max_words":      maxWords,
		"prior_text":     tailRunes(req.PriorText, b.gen.PriorWindowRunes),
	}
}

func (b *Builder) padVars(req *entity.GenerationRequest) map[string]any {
	minWords, maxWords := b.wordRange(req)
	return map[string]any{
		"chapter_title":  orDefault(req.ChapterTitle, "未命名章节"),
		"genre":          orDefault(req.Genre, "沿用原文"),
		"style_strength": styleStrength(req.StyleStrength),
		"min_words":      minWords,
		"max_words":      maxWords,
		"chapter_text":   req.Prompt,
	}
}

func (b *Builder) inspirationVars(req *entity.GenerationRequest) map[string]any {
	return map[string]any{
		"topic":          req.Prompt,
		"genre":          orDefault(req.Genre, "不限"),
		"style_strength": styleStrength(req.StyleStrength),
	}
}

func (b *Builder) rewriteVars(req *entity.GenerationRequest) map[string]any {
	return map[string]any{
		"analysis_notes": orDefault(req.AnalysisNotes, "整体提升可读性与悬念"),
		"genre":          orDefault(req.Genre, "原文题材"),
		"style_strength": styleStrength(req.StyleStrength),
		"source_text":    req.Prompt,
	}
}

func (b *Builder) wordRange(req *entity.GenerationRequest) (int, int) {
	minWords := b.gen.MinWords
	maxWords := b.gen.MaxWords
	if req.TargetWords > 0 {
		minWords = req.TargetWords
	}
	if maxWords < minWords {
		maxWords = minWords
	}
	return minWords, maxWords
}

func styleStrength(s string) string {
	switch s {
	case "low", "medium", "high":
		return s
	default:
		return "medium"
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// tailRunes 截取字符串尾部最多 n 个 rune
func tailRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
