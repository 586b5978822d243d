package story

import (
	"fmt"
	"regexp"
	"strings"

	"novel-forge-api/internal/domain/entity"
)

const placeholderChapterTitle = "未命名章节"

// 章节尾部的元叙述句式，按序剥除
var metaTailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`本章(到此|完|结束).{0,40}$`),
	regexp.MustCompile(`以上(就是|为).{0,40}$`),
	regexp.MustCompile(`结局留下悬念.{0,120}$`),
	regexp.MustCompile(`暗示着.{0,120}转折点.{0,80}$`),
	regexp.MustCompile(`为后续剧情(埋下|留下).{0,80}$`),
}

// CleanChapterContent 剥除章节结尾的"本章总结"类元叙述
//
// 对已清洗文本再次调用是幂等的。
func CleanChapterContent(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return s
	}
	for _, re := range metaTailPatterns {
		s = strings.TrimSpace(re.ReplaceAllString(s, ""))
	}
	return s
}

// EnsureUniqueTitles 保证标题两两不同
//
// 空标题替换为占位符；第 n 次重复追加"（续n+1）"后缀，
// 后缀已被输入占用时继续顺延。输出长度与输入一致。
func EnsureUniqueTitles(chapters []entity.Chapter) []entity.Chapter {
	seen := make(map[string]int, len(chapters))
	used := make(map[string]bool, len(chapters))
	out := make([]entity.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		title := strings.TrimSpace(ch.Title)
		if title == "" {
			title = placeholderChapterTitle
		}
		base := title
		n := seen[base]
		if n > 0 {
			title = fmt.Sprintf("%s（续%d）", base, n+1)
		}
		for used[title] {
			n++
			title = fmt.Sprintf("%s（续%d）", base, n+1)
		}
		seen[base] = n + 1
		used[title] = true
		out = append(out, entity.Chapter{Title: title, Content: ch.Content})
	}
	return out
}
