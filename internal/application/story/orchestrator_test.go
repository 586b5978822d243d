package story

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-forge-api/internal/config"
	"novel-forge-api/internal/domain/entity"
	"novel-forge-api/internal/domain/port"
	"novel-forge-api/internal/workflow/prompt"
	apperrors "novel-forge-api/pkg/errors"
)

// scriptedGenerator 按调用顺序返回预置响应
type scriptedGenerator struct {
	t         *testing.T
	responses []string
	calls     int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ []*schema.Message, _ port.GenerateOptions) (string, error) {
	require.Less(g.t, g.calls, len(g.responses), "unexpected upstream call")
	resp := g.responses[g.calls]
	g.calls++
	return resp, nil
}

type staticResolver struct {
	descriptor entity.ModelDescriptor
}

func (r staticResolver) Resolve(string) (entity.ModelDescriptor, error) {
	return r.descriptor, nil
}

func testGenerationConfig() config.GenerationConfig {
	return config.GenerationConfig{
		MinPromptLength:    5,
		MaxPromptLength:    100,
		MinWords:           100,
		MaxWords:           200,
		ShortChapterFloor:  30,
		ShortChapterRatio:  0.25,
		OutlineMinChapters: 4,
		OutlineShortShare:  0.7,
		OutlineMinShort:    3,
		ExpandTriggerRatio: 0.8,
		MaxExpandRounds:    2,
		FinalGateFloor:     40,
		FinalGateRatio:     0.5,
		ContinueFloor:      20,
		ContinueFloorRatio: 0.25,
		PriorWindowRunes:   1000,
	}
}

func newTestOrchestrator(t *testing.T, responses ...string) (*Orchestrator, *scriptedGenerator) {
	t.Helper()
	cfg := testGenerationConfig()
	gen := &scriptedGenerator{t: t, responses: responses}
	resolver := staticResolver{descriptor: entity.ModelDescriptor{Provider: "openrouter", ID: "test-model"}}
	builder := prompt.NewBuilder(prompt.NewRegistry(), cfg)
	return NewOrchestrator(builder, gen, NewAuditor(nil), resolver, cfg, NewStats()), gen
}

func longBody(n int) string {
	return strings.Repeat("风", n)
}

func TestOrchestrator_GenerateHappyPath(t *testing.T) {
	raw := "《星火》\n\n第一章 启程\n" + longBody(120) + "\n\n第二章 风暴\n" + longBody(120)
	o, gen := newTestOrchestrator(t, raw)

	result, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:   entity.ModeGenerate,
		Prompt: "一个少年踏上寻找失踪父亲的旅程",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "星火", result.Title)
	assert.Equal(t, "openrouter::test-model", result.ModelUID)
	require.Len(t, result.Chapters, 2)
	assert.Equal(t, "第一章 启程", result.Chapters[0].Title)
	assert.Equal(t, 0, result.RepairRounds)
	assert.Equal(t, 0, result.ExpandRounds)
	assert.Equal(t, 2, result.Report.Summary.ChapterCount)
}

func TestOrchestrator_PromptLengthValidation(t *testing.T) {
	o, gen := newTestOrchestrator(t)

	tests := []struct {
		name   string
		prompt string
	}{
		{"过短", "短"},
		{"过长", strings.Repeat("长", 101)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Run(context.Background(), &entity.GenerationRequest{
				Mode:   entity.ModeGenerate,
				Prompt: tt.prompt,
			})
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
		})
	}
	assert.Equal(t, 0, gen.calls)
}

func TestOrchestrator_OutlineRepair(t *testing.T) {
	// 5 章中 4 章为短章：判定为大纲形态并触发修复
	outline := "第一章 开端\n少年离家。\n\n第二章 遇险\n山中遭伏。\n\n第三章 得宝\n洞中奇遇。\n\n第四章 结义\n萍水相逢。\n\n第五章 决战\n" + longBody(120)
	repaired := "第一章 开端\n" + longBody(120)
	o, gen := newTestOrchestrator(t, outline, repaired)

	result, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:   entity.ModeGenerate,
		Prompt: "一个少年踏上寻找失踪父亲的旅程",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, 1, result.RepairRounds)
	require.Len(t, result.Chapters, 1)
	assert.Equal(t, "第一章 开端", result.Chapters[0].Title)
}

func TestOrchestrator_OutlineRepairFails(t *testing.T) {
	outline := "第一章 开端\n少年离家。\n\n第二章 遇险\n山中遭伏。\n\n第三章 得宝\n洞中奇遇。\n\n第四章 结义\n萍水相逢。"
	o, _ := newTestOrchestrator(t, outline, "还是太短。")

	_, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:   entity.ModeGenerate,
		Prompt: "一个少年踏上寻找失踪父亲的旅程",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQualityGate))
}

func TestOrchestrator_NoRepairBelowShortQuota(t *testing.T) {
	// 5 章中仅 2 章短：不触发大纲修复，但短章走自动扩写
	raw := strings.Join([]string{
		"第一章 开端\n" + longBody(120),
		"第二章 遇险\n短章。",
		"第三章 得宝\n" + longBody(120),
		"第四章 结义\n也是短章。",
		"第五章 决战\n" + longBody(120),
	}, "\n\n")
	o, gen := newTestOrchestrator(t, raw, longBody(130), longBody(130))

	result, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:   entity.ModeGenerate,
		Prompt: "一个少年踏上寻找失踪父亲的旅程",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, 0, result.RepairRounds)
	assert.Equal(t, 2, result.ExpandRounds)
	require.Len(t, result.Chapters, 5)
	assert.GreaterOrEqual(t, CountNetWords(result.Chapters[1].Content), 100)
	assert.GreaterOrEqual(t, CountNetWords(result.Chapters[3].Content), 100)
}

func TestOrchestrator_ExpandRoundsCapAndFinalGate(t *testing.T) {
	// 两轮扩写后仍低于终审下限：整体拒绝
	short := "第一章 独行\n" + longBody(35)
	o, gen := newTestOrchestrator(t, short, longBody(35), longBody(35))

	_, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:   entity.ModeGenerate,
		Prompt: "一个少年踏上寻找失踪父亲的旅程",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQualityGate))
	assert.Equal(t, 3, gen.calls)
}

func TestOrchestrator_ContinueSynthesizedTitle(t *testing.T) {
	prior := "第一章 启程\n他走了。\n\n第二章 风暴\n他倒下了。"
	o, _ := newTestOrchestrator(t, longBody(120))

	result, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:       entity.ModeContinue,
		Prompt:     "继续写下去，保持紧张节奏",
		PriorText:  prior,
		NovelTitle: "星火",
	})

	require.NoError(t, err)
	require.Len(t, result.Chapters, 1)
	// 前文含两个章节标题，续写序号为 3；原文无标题时合成
	assert.Equal(t, "第3章", result.Chapters[0].Title)
	assert.Equal(t, "星火", result.Title)
}

func TestOrchestrator_ContinueKeepsModelHeading(t *testing.T) {
	o, _ := newTestOrchestrator(t, "第三章 对峙\n"+longBody(120))

	result, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:         entity.ModeContinue,
		Prompt:       "继续写下去，保持紧张节奏",
		ChapterIndex: 3,
	})

	require.NoError(t, err)
	require.Len(t, result.Chapters, 1)
	assert.Equal(t, "第三章 对峙", result.Chapters[0].Title)
	assert.Equal(t, "无标题", result.Title)
}

func TestOrchestrator_ContinueTooShortRejected(t *testing.T) {
	o, _ := newTestOrchestrator(t, "短。")

	_, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:         entity.ModeContinue,
		Prompt:       "继续写下去，保持紧张节奏",
		ChapterIndex: 2,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQualityGate))
}

func TestOrchestrator_InspirationSingleChapter(t *testing.T) {
	o, _ := newTestOrchestrator(t, longBody(120))

	result, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:   entity.ModeInspiration,
		Prompt: "末世题材的灵感方向",
	})

	require.NoError(t, err)
	require.Len(t, result.Chapters, 1)
	assert.Equal(t, "灵感集", result.Chapters[0].Title)
}

func TestOrchestrator_ExtractionFailure(t *testing.T) {
	o, _ := newTestOrchestrator(t, "   ")

	_, err := o.Run(context.Background(), &entity.GenerationRequest{
		Mode:   entity.ModeGenerate,
		Prompt: "一个少年踏上寻找失踪父亲的旅程",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeExtractionFailed))
}
