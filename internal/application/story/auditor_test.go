package story

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-forge-api/internal/domain/entity"
)

func TestCountNetWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"纯汉字", "风雪夜归人", 5},
		{"混合", "第1章 Hello，世界！", 10},
		{"仅标点", "……！？、。", 0},
		{"空串", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountNetWords(tt.in))
		})
	}
}

func TestReadabilityScore(t *testing.T) {
	goodText := "他醒了。窗外下着雨。街上没有人。\n\n他穿好衣服。出门买了早饭。\n\n一切如常。"
	longSentence := strings.Repeat("这是一个被刻意拉得很长很长的句子片段", 5) + "。"

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"空文本为零分", "   ", 0},
		{"短句多段为基准分", goodText, 80},
		// 超长句 -20，段落不足 -10
		{"超长句单段", longSentence, 50},
		// 衔接词叠用 -5，段落不足 -10
		{"衔接词叠用", "他走了。然后然后又回来了。天黑了。", 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadabilityScore(tt.in))
		})
	}
}

func TestCoherenceScore(t *testing.T) {
	words := []string{
		"林昊", "夜雨", "古城", "长剑", "烈火",
		"残阳", "孤舟", "断桥", "寒潭", "密信",
		"旧约", "灯影", "风声", "石阶", "暗门",
		"血誓", "铁骑", "荒原", "祠堂", "玉佩",
	}
	joined := func(n int) string { return strings.Join(words[:n], "，") + "。" }

	tests := []struct {
		name    string
		current string
		prev    string
		hasPrev bool
		want    int
	}{
		{"空章节", "  ", "前文", true, 0},
		{"无前文", "他推开门。", "", false, 85},
		{"零重叠", "他推开门。", joined(20), true, 62},
		{"重叠五词", joined(5), joined(20), true, 74},
		{"重叠十词", joined(10), joined(20), true, 82},
		{"重叠二十词", joined(20), joined(20), true, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoherenceScore(tt.current, tt.prev, tt.hasPrev))
		})
	}
}

func TestCheckHook(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantOK     bool
		wantReason string
	}{
		{"关键词钩子", "他看着远方。真相即将浮出水面。", true, "keyword_hook"},
		{"标点钩子", "门后到底站着谁？", true, "punctuation_hook"},
		{"无信号", "他安静地睡着了。", false, "no_hook_signal"},
		{"空正文", "   ", false, "empty_tail"},
		{"关键词超出尾窗", "秘密。" + strings.Repeat("平淡的收尾叙述，", 30) + "他睡了。", false, "no_hook_signal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := CheckHook(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestAuditor_Audit(t *testing.T) {
	auditor := NewAuditor([]string{"暴恐", "洗钱", "走私"})
	chapters := []entity.Chapter{
		{Title: "第一章", Content: "他卷入了一场洗钱风波。结局会怎样？"},
		{Title: "第二章", Content: "风波平息了。他回到了家。"},
	}

	report := auditor.Audit(chapters)

	require.Len(t, report.Chapters, 2)
	assert.Equal(t, 2, report.Summary.ChapterCount)
	assert.Equal(t, 3, report.Summary.SensitiveWordCount)
	assert.Equal(t, 1, report.Summary.SensitiveHitCount)

	first := report.Chapters[0]
	assert.Equal(t, []string{"洗钱"}, first.SensitiveHits)
	require.Len(t, first.SensitiveSuggestions, 1)
	assert.Equal(t, "非法资金流转", first.SensitiveSuggestions[0].ReplaceWith)
	assert.True(t, first.HookOK)
	assert.Equal(t, 85, first.CoherenceScore)

	second := report.Chapters[1]
	assert.Empty(t, second.SensitiveHits)
	assert.False(t, second.HookOK)
	// 连贯性以响应内上一章为参照
	assert.NotEqual(t, 85, second.CoherenceScore)

	assert.InDelta(t, 0.5, report.Summary.HookRate, 1e-9)
}

func TestAuditor_Audit_EmptyChapterBody(t *testing.T) {
	auditor := NewAuditor(nil)

	report := auditor.Audit([]entity.Chapter{{Title: "第一章", Content: "   "}})

	require.Len(t, report.Chapters, 1)
	ch := report.Chapters[0]
	assert.Equal(t, 0, ch.WordCountNet)
	assert.Equal(t, 0, ch.ReadabilityScore)
	assert.Equal(t, 0, ch.CoherenceScore)
	assert.False(t, ch.HookOK)
	assert.Equal(t, "empty_tail", ch.HookReason)
}

func TestSuggestionFor_Default(t *testing.T) {
	assert.Equal(t, "合规替代表述", suggestionFor("未收录词"))
}

func TestLoadSensitiveWords_MissingFile(t *testing.T) {
	words, err := LoadSensitiveWords("testdata/does_not_exist.txt")
	require.NoError(t, err)
	assert.Nil(t, words)
}
