package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-forge-api/internal/domain/entity"
)

func TestCleanChapterContent_StripsMetaTail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"本章到此",
			"他推开门，走进了黑暗。\n\n本章到此结束，感谢阅读。",
			"他推开门，走进了黑暗。",
		},
		{
			"以上就是",
			"刀光一闪。\n\n以上就是本章的全部内容。",
			"刀光一闪。",
		},
		{
			"结局悬念",
			"她转身离去。\n\n结局留下悬念，主角的命运尚未可知。",
			"她转身离去。",
		},
		{
			"埋下伏笔",
			"火焰熄灭了。\n\n为后续剧情埋下了重要伏笔。",
			"火焰熄灭了。",
		},
		{
			"正文不受影响",
			"正文里提到本章到此的说法并非结尾。\n\n他继续向前走。",
			"正文里提到本章到此的说法并非结尾。\n\n他继续向前走。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanChapterContent(tt.in))
		})
	}
}

func TestCleanChapterContent_Idempotent(t *testing.T) {
	in := "他推开门，走进了黑暗。\n\n本章完。"

	once := CleanChapterContent(in)
	twice := CleanChapterContent(once)

	assert.Equal(t, once, twice)
}

func TestCleanChapterContent_Empty(t *testing.T) {
	assert.Equal(t, "", CleanChapterContent("  \n "))
}

func TestEnsureUniqueTitles(t *testing.T) {
	in := []entity.Chapter{
		{Title: "第一章", Content: "a"},
		{Title: "第一章", Content: "b"},
		{Title: "第一章", Content: "c"},
		{Title: "第二章", Content: "d"},
	}

	out := EnsureUniqueTitles(in)

	require.Len(t, out, 4)
	assert.Equal(t, "第一章", out[0].Title)
	assert.Equal(t, "第一章（续2）", out[1].Title)
	assert.Equal(t, "第一章（续3）", out[2].Title)
	assert.Equal(t, "第二章", out[3].Title)
	// 正文不动
	assert.Equal(t, "b", out[1].Content)
}

func TestEnsureUniqueTitles_EmptyTitles(t *testing.T) {
	in := []entity.Chapter{
		{Title: "", Content: "a"},
		{Title: "  ", Content: "b"},
	}

	out := EnsureUniqueTitles(in)

	require.Len(t, out, 2)
	assert.Equal(t, "未命名章节", out[0].Title)
	assert.Equal(t, "未命名章节（续2）", out[1].Title)
}

func TestEnsureUniqueTitles_SuffixAlreadyTaken(t *testing.T) {
	// 输入本身就带"（续2）"标题时，重复标题的后缀继续顺延
	in := []entity.Chapter{
		{Title: "第一章", Content: "a"},
		{Title: "第一章（续2）", Content: "b"},
		{Title: "第一章", Content: "c"},
	}

	out := EnsureUniqueTitles(in)

	require.Len(t, out, 3)
	assert.Equal(t, "第一章", out[0].Title)
	assert.Equal(t, "第一章（续2）", out[1].Title)
	assert.Equal(t, "第一章（续3）", out[2].Title)

	titles := make(map[string]bool, len(out))
	for _, ch := range out {
		assert.False(t, titles[ch.Title], "标题重复: %s", ch.Title)
		titles[ch.Title] = true
	}
}

func TestEnsureUniqueTitles_AllDistinct(t *testing.T) {
	in := []entity.Chapter{
		{Title: "第一章 夜雨", Content: "a"},
		{Title: "第二章 灯下", Content: "b"},
	}

	out := EnsureUniqueTitles(in)

	require.Len(t, out, 2)
	for i := range in {
		assert.Equal(t, in[i].Title, out[i].Title)
	}
}
