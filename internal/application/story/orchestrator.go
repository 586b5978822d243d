package story

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
	"novel-forge-api/internal/domain/port"
	"novel-forge-api/internal/workflow/prompt"
	apperrors "novel-forge-api/pkg/errors"
	"novel-forge-api/pkg/logger"
	"novel-forge-api/pkg/metrics"
)

// ModelResolver 校验并解析模型选择串
type ModelResolver interface {
	Resolve(selector string) (entity.ModelDescriptor, error)
}

// Orchestrator 生成管线编排器
//
// 单次请求的流转：构建提示词 -> 上游调用 -> 结构化提取 ->
// 大纲修复 -> 短章自动扩写 -> 终审 -> 清洗与审计。
type Orchestrator struct {
	builder   *prompt.Builder
	generator port.Generator
	auditor   *Auditor
	resolver  ModelResolver
	cfg       config.GenerationConfig
	stats     *Stats
}

// NewOrchestrator 创建编排器
func NewOrchestrator(
	builder *prompt.Builder,
	generator port.Generator,
	auditor *Auditor,
	resolver ModelResolver,
	cfg config.GenerationConfig,
	stats *Stats,
) *Orchestrator {
	return &Orchestrator{
		builder:   builder,
		generator: generator,
		auditor:   auditor,
		resolver:  resolver,
		cfg:       cfg,
		stats:     stats,
	}
}

// Run 执行一次生成请求
func (o *Orchestrator) Run(ctx context.Context, req *entity.GenerationRequest) (*entity.NovelResult, error) {
	start := time.Now()
	mode := string(req.Mode)

	result, err := o.run(ctx, req)
	metrics.GenerationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(mode, "error").Inc()
		return nil, err
	}

	metrics.GenerationTotal.WithLabelValues(mode, "success").Inc()
	metrics.ChaptersProduced.Add(float64(len(result.Chapters)))
	o.stats.RecordSuccess(len(result.Chapters))
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req *entity.GenerationRequest) (*entity.NovelResult, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	descriptor, err := o.resolver.Resolve(req.ModelSelector)
	if err != nil {
		return nil, err
	}

	if req.Mode == entity.ModeContinue && req.ChapterIndex <= 0 {
		req.ChapterIndex = countChapterHeadings(req.PriorText) + 1
	}

	raw, err := o.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	title, chapters, err := o.extract(ctx, req, raw)
	if err != nil {
		return nil, err
	}

	repairRounds := 0
	if req.Mode == entity.ModeGenerate && o.looksLikeOutline(chapters) {
		logger.Warn(ctx, "generation looks like an outline, attempting repair",
			"chapters", len(chapters))
		repaired, err := o.repairOutline(ctx, req)
		if err != nil {
			return nil, err
		}
		chapters = []entity.Chapter{repaired}
		repairRounds = 1
	}

	expandRounds, err := o.autoExpand(ctx, req, chapters)
	if err != nil {
		return nil, err
	}

	if err := o.finalGate(chapters); err != nil {
		return nil, err
	}

	for i := range chapters {
		chapters[i].Content = CleanChapterContent(chapters[i].Content)
	}
	chapters = EnsureUniqueTitles(chapters)

	return &entity.NovelResult{
		Title:        title,
		Mode:         req.Mode,
		ModelUID:     descriptor.UID(),
		Chapters:     chapters,
		Report:       o.auditor.Audit(chapters),
		RepairRounds: repairRounds,
		ExpandRounds: expandRounds,
	}, nil
}

func (o *Orchestrator) validate(req *entity.GenerationRequest) error {
	n := utf8.RuneCountInString(strings.TrimSpace(req.Prompt))
	if n < o.cfg.MinPromptLength {
		return apperrors.ErrInvalidParam.WithDetail(
			fmt.Sprintf("提示词过短：至少需要 %d 字", o.cfg.MinPromptLength))
	}
	if n > o.cfg.MaxPromptLength {
		return apperrors.ErrInvalidParam.WithDetail(
			fmt.Sprintf("提示词过长：最多允许 %d 字", o.cfg.MaxPromptLength))
	}
	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, req *entity.GenerationRequest) (string, error) {
	messages, err := o.builder.Build(ctx, req)
	if err != nil {
		return "", apperrors.ErrInternalError.WithError(err)
	}
	return o.generator.Generate(ctx, messages, port.GenerateOptions{
		ModelSelector: req.ModelSelector,
	})
}

func (o *Orchestrator) extract(ctx context.Context, req *entity.GenerationRequest, raw string) (string, []entity.Chapter, error) {
	switch req.Mode {
	case entity.ModeInspiration:
		// 灵感模式不做结构化提取
		return defaultNovelTitle, []entity.Chapter{
			{Title: "灵感集", Content: strings.TrimSpace(raw)},
		}, nil

	case entity.ModeContinue:
		ch := extractContinueChapter(raw, req.ChapterIndex)
		if CountNetWords(ch.Content) < o.cfg.ContinueThreshold() {
			logger.Warn(ctx, "continuation too short, rejecting",
				"words", CountNetWords(ch.Content), "floor", o.cfg.ContinueThreshold())
			return "", nil, apperrors.ErrQualityGate.WithDetail(
				"续写结果过短，疑似模型输出格式异常，请重试或更换模型")
		}
		title := req.NovelTitle
		if title == "" {
			title = defaultNovelTitle
		}
		return title, []entity.Chapter{ch}, nil

	default:
		title, chapters := ExtractTitleAndChapters(raw)
		if len(chapters) == 0 {
			return "", nil, apperrors.ErrExtractionFailed.WithDetail("上游返回内容无法解析出章节")
		}
		return title, chapters, nil
	}
}

// looksLikeOutline 判定提取结果是否为"大纲形态"：
// 章节数达到下限，且短章占比与绝对数量同时超标。
func (o *Orchestrator) looksLikeOutline(chapters []entity.Chapter) bool {
	if len(chapters) < o.cfg.OutlineMinChapters {
		return false
	}
	threshold := o.cfg.ShortChapterThreshold()
	short := 0
	for _, ch := range chapters {
		if CountNetWords(ch.Content) < threshold {
			short++
		}
	}
	if short < o.cfg.OutlineMinShort {
		return false
	}
	return float64(short) >= float64(len(chapters))*o.cfg.OutlineShortShare
}

// repairOutline 以"续写第一章"的方式换取一次完整正文，仅修复一次
func (o *Orchestrator) repairOutline(ctx context.Context, req *entity.GenerationRequest) (entity.Chapter, error) {
	repairReq := *req
	repairReq.Mode = entity.ModeContinue
	repairReq.ChapterIndex = 1
	repairReq.PriorText = ""

	raw, err := o.dispatch(ctx, &repairReq)
	if err != nil {
		return entity.Chapter{}, err
	}

	ch := extractContinueChapter(raw, 1)
	if CountNetWords(ch.Content) < o.cfg.ShortChapterThreshold() {
		return entity.Chapter{}, apperrors.ErrQualityGate.WithDetail(
			"生成结果疑似章节大纲且修复失败，请细化提示词（补充人物、冲突与场景）后重试")
	}
	return ch, nil
}

// autoExpand 对低于扩写阈值的章节逐章扩写，每章最多扩写若干轮
func (o *Orchestrator) autoExpand(ctx context.Context, req *entity.GenerationRequest, chapters []entity.Chapter) (int, error) {
	threshold := o.cfg.ExpandThreshold()
	totalRounds := 0

	for i := range chapters {
		for rounds := 0; rounds < o.cfg.MaxExpandRounds; rounds++ {
			if CountNetWords(chapters[i].Content) >= threshold {
				break
			}

			padReq := *req
			padReq.Mode = entity.ModePad
			padReq.ChapterTitle = chapters[i].Title
			padReq.Prompt = chapters[i].Content

			raw, err := o.dispatch(ctx, &padReq)
			if err != nil {
				return totalRounds, err
			}
			totalRounds++

			if _, expanded := ExtractTitleAndChapters(raw); len(expanded) > 0 {
				chapters[i].Content = expanded[0].Content
			} else {
				chapters[i].Content = CleanChapterContent(raw)
			}
		}
	}
	return totalRounds, nil
}

// finalGate 终审：任何一章仍低于下限则整体拒绝
func (o *Orchestrator) finalGate(chapters []entity.Chapter) error {
	floor := o.cfg.FinalGateThreshold()
	for _, ch := range chapters {
		if CountNetWords(ch.Content) < floor {
			return apperrors.ErrQualityGate.WithDetail(fmt.Sprintf(
				"章节「%s」正文不足 %d 字，已拒绝返回；请降低章数要求或更换模型后重试",
				strings.TrimSpace(ch.Title), floor))
		}
	}
	return nil
}

// extractContinueChapter 从续写结果中提取单章
//
// 优先匹配目标序号的标题；否则接受首行的通用章节标题；
// 都没有时以合成标题包裹全文。
func extractContinueChapter(raw string, index int) entity.Chapter {
	text := strings.TrimSpace(raw)
	synthesized := fmt.Sprintf("第%d章", index)

	if re := headingForIndex(index); re != nil {
		if loc := re.FindStringIndex(text); loc != nil {
			title := strings.TrimSpace(text[loc[0]:loc[1]])
			body := strings.TrimSpace(text[loc[1]:])
			if body != "" {
				return entity.Chapter{Title: title, Content: body}
			}
		}
	}

	if nl := strings.IndexByte(text, '\n'); nl > 0 {
		first := strings.TrimSpace(text[:nl])
		if chapterHeadingRe.FindString(first) == first && first != "" {
			body := strings.TrimSpace(text[nl+1:])
			if body != "" {
				return entity.Chapter{Title: first, Content: body}
			}
		}
	}

	return entity.Chapter{Title: synthesized, Content: text}
}

// headingForIndex 构造匹配指定序号标题的正则，同时接受阿拉伯与汉字数字
func headingForIndex(index int) *regexp.Regexp {
	variants := []string{fmt.Sprintf("%d", index)}
	if cn := cnNumeral(index); cn != "" {
		variants = append(variants, cn)
	}
	pattern := fmt.Sprintf(`第(?:%s)章[^\n]*`, strings.Join(variants, "|"))
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

// cnNumeral 将 1-99 转为汉字数字
func cnNumeral(n int) string {
	if n <= 0 || n >= 100 {
		return ""
	}
	if n <= 10 {
		return cnOrdinals[n-1]
	}
	tens, ones := n/10, n%10
	s := ""
	if tens > 1 {
		s = cnOrdinals[tens-1]
	}
	s += "十"
	if ones > 0 {
		s += cnOrdinals[ones-1]
	}
	return s
}

func countChapterHeadings(text string) int {
	return len(chapterHeadingRe.FindAllString(text, -1))
}
