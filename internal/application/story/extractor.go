// Package story 实现小说生成与校验管线
package story

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"novel-forge-api/internal/domain/entity"
)

const (
	defaultNovelTitle   = "无标题"
	fallbackParagraphs  = 10
	fallbackMinParaLen  = 50
	catchAllChapterName = "第一章"
)

var (
	titleBracketRe = regexp.MustCompile(`[《【「](.*?)[》】」]`)

	// 章节标题识别模式，按优先级排列
	chapterHeadingRe = regexp.MustCompile(`(?im)` + strings.Join([]string{
		`第[一二三四五六七八九十百千万0-9]+章[^\n]*`,
		`第[一二三四五六七八九十百千万0-9]+节[^\n]*`,
		`Chapter\s*[0-9]+[^\n]*`,
		`[0-9]+\.\s*[^\n]*`,
		`[一二三四五六七八九十]+、[^\n]*`,
	}, "|"))

	excessBlankRe  = regexp.MustCompile(`\n\s*\n\s*\n`)
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)

	cnOrdinals = []string{"一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}
)

// ExtractTitleAndChapters 从原始生成文本中解析书名与章节列表
//
// 找不到任何章节标题时退化为按空行分段；非空输入保证至少产出一章。
func ExtractTitleAndChapters(content string) (string, []entity.Chapter) {
	title := defaultNovelTitle
	if m := titleBracketRe.FindStringSubmatch(content); m != nil {
		title = m[1]
	}

	var chapters []entity.Chapter

	matches := chapterHeadingRe.FindAllStringIndex(content, -1)
	for i, loc := range matches {
		heading := strings.TrimSpace(content[loc[0]:loc[1]])

		start := loc[1]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		body := strings.TrimSpace(content[start:end])
		body = excessBlankRe.ReplaceAllString(body, "\n\n")
		if body == "" {
			continue
		}
		chapters = append(chapters, entity.Chapter{Title: heading, Content: body})
	}

	// 无标题命中时按段落切分
	if len(chapters) == 0 {
		paragraphs := splitParagraphs(content)
		if len(paragraphs) > 1 {
			for _, p := range paragraphs {
				if len(chapters) >= fallbackParagraphs {
					break
				}
				if utf8.RuneCountInString(p) <= fallbackMinParaLen {
					continue
				}
				chapters = append(chapters, entity.Chapter{
					Title:   "第" + cnOrdinals[len(chapters)] + "章",
					Content: p,
				})
			}
		} else if len(paragraphs) == 1 {
			chapters = append(chapters, entity.Chapter{
				Title:   catchAllChapterName,
				Content: strings.TrimSpace(content),
			})
		}
	}

	// 兜底：非空输入至少返回一章
	if len(chapters) == 0 && strings.TrimSpace(content) != "" {
		chapters = append(chapters, entity.Chapter{
			Title:   catchAllChapterName,
			Content: strings.TrimSpace(content),
		})
	}

	return title, chapters
}

func splitParagraphs(content string) []string {
	parts := paragraphSplit.Split(strings.TrimSpace(content), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
