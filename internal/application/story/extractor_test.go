package story

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitleAndChapters_HeadingsAndTitle(t *testing.T) {
	content := "《迷途》\n\n第一章 夜雨\n他在雨里走了很久，手里的信封早已湿透。\n\n第二章 灯下\n灯下的人影一动不动，像是等了他整整十年。"

	title, chapters := ExtractTitleAndChapters(content)

	assert.Equal(t, "迷途", title)
	require.Len(t, chapters, 2)
	assert.Equal(t, "第一章 夜雨", chapters[0].Title)
	assert.Contains(t, chapters[0].Content, "信封早已湿透")
	assert.Equal(t, "第二章 灯下", chapters[1].Title)
	assert.Contains(t, chapters[1].Content, "等了他整整十年")
}

func TestExtractTitleAndChapters_HeadingVariants(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"中文章", "第三章 风起\n" + strings.Repeat("风", 60), "第三章 风起"},
		{"中文节", "第二节 序曲\n" + strings.Repeat("曲", 60), "第二节 序曲"},
		{"英文Chapter", "Chapter 1 The Road\n" + strings.Repeat("a", 60), "Chapter 1 The Road"},
		{"数字点号", "1. 开端\n" + strings.Repeat("始", 60), "1. 开端"},
		{"顿号序号", "一、楔子\n" + strings.Repeat("引", 60), "一、楔子"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, chapters := ExtractTitleAndChapters(tt.content)
			require.NotEmpty(t, chapters)
			assert.Equal(t, tt.want, chapters[0].Title)
		})
	}
}

func TestExtractTitleAndChapters_ParagraphFallback(t *testing.T) {
	long := strings.Repeat("长夜漫漫城门紧闭", 10) // 80 字
	short := "太短的段落"
	content := long + "\n\n" + short + "\n\n" + long

	title, chapters := ExtractTitleAndChapters(content)

	assert.Equal(t, "无标题", title)
	require.Len(t, chapters, 2)
	assert.Equal(t, "第一章", chapters[0].Title)
	assert.Equal(t, "第二章", chapters[1].Title)
}

func TestExtractTitleAndChapters_SingleBlockCatchAll(t *testing.T) {
	content := "没有任何标题格式的一整段文字。"

	_, chapters := ExtractTitleAndChapters(content)

	require.Len(t, chapters, 1)
	assert.Equal(t, "第一章", chapters[0].Title)
	assert.Equal(t, content, chapters[0].Content)
}

func TestExtractTitleAndChapters_NonEmptyInputAlwaysYieldsChapter(t *testing.T) {
	// 段落退化路径全部过滤后仍需兜底产出一章
	inputs := []string{
		"短",
		"短段\n\n也短\n\n还是短",
		strings.Repeat("字", 30),
	}
	for _, in := range inputs {
		_, chapters := ExtractTitleAndChapters(in)
		assert.NotEmpty(t, chapters, "input=%q", in)
	}
}

func TestExtractTitleAndChapters_EmptyInput(t *testing.T) {
	_, chapters := ExtractTitleAndChapters("   \n\n  ")
	assert.Empty(t, chapters)
}

func TestExtractTitleAndChapters_SkipsEmptyBodies(t *testing.T) {
	content := "第一章 空壳\n\n第二章 实体\n" + strings.Repeat("事", 40)

	_, chapters := ExtractTitleAndChapters(content)

	require.Len(t, chapters, 1)
	assert.Equal(t, "第二章 实体", chapters[0].Title)
}
