package story

import (
	"math"
	"regexp"
	"strings"

	"novel-forge-api/internal/domain/entity"
)

var (
	netWordRe    = regexp.MustCompile(`[\x{4e00}-\x{9fff}A-Za-z0-9]`)
	sentenceEnd  = regexp.MustCompile(`[。！？!?]`)
	cjkTokenRe   = regexp.MustCompile(`[\x{4e00}-\x{9fff}]{2,}`)
	hookKeywordRe = regexp.MustCompile(`(下章|下一章|未完待续|悬念|转折|真相|秘密|危机)`)
	hookTailRe   = regexp.MustCompile(`[？?！!…]$`)
	transitionRe = regexp.MustCompile(`(?:然后然后|接着接着|随后随后|之后之后)`)
)

// CountNetWords 统计净字数：汉字、字母、数字
func CountNetWords(text string) int {
	return len(netWordRe.FindAllString(text, -1))
}

// Auditor 章节质量审计器
type Auditor struct {
	words []string
}

// NewAuditor 创建审计器
func NewAuditor(sensitiveWords []string) *Auditor {
	return &Auditor{words: sensitiveWords}
}

// Audit 逐章审计并汇总
//
// 连贯性以响应内的上一章为参照，不跨请求。
func (a *Auditor) Audit(chapters []entity.Chapter) entity.QualityReport {
	audits := make([]entity.ChapterAudit, 0, len(chapters))
	totalSensitive := 0
	prev := ""

	for i, ch := range chapters {
		hits := a.detectSensitive(ch.Content)
		suggestions := make([]entity.SensitiveSuggestion, 0, len(hits))
		for _, w := range hits {
			suggestions = append(suggestions, entity.SensitiveSuggestion{
				Word:        w,
				ReplaceWith: suggestionFor(w),
			})
		}
		totalSensitive += len(hits)

		hookOK, hookReason := CheckHook(ch.Content)
		hasPrev := i > 0
		audits = append(audits, entity.ChapterAudit{
			Title:                ch.Title,
			WordCountNet:         CountNetWords(ch.Content),
			SensitiveHits:        hits,
			SensitiveSuggestions: suggestions,
			ReadabilityScore:     ReadabilityScore(ch.Content),
			CoherenceScore:       CoherenceScore(ch.Content, prev, hasPrev),
			HookOK:               hookOK,
			HookReason:           hookReason,
		})
		prev = ch.Content
	}

	summary := entity.QualitySummary{
		ChapterCount:       len(audits),
		SensitiveHitCount:  totalSensitive,
		SensitiveWordCount: len(a.words),
	}
	if len(audits) > 0 {
		sumRead, sumCoh, hooks := 0, 0, 0
		for _, x := range audits {
			sumRead += x.ReadabilityScore
			sumCoh += x.CoherenceScore
			if x.HookOK {
				hooks++
			}
		}
		summary.AvgReadability = float64(sumRead / len(audits))
		summary.AvgCoherence = float64(sumCoh / len(audits))
		summary.HookRate = math.Round(float64(hooks)/float64(len(audits))*100) / 100
	}

	return entity.QualityReport{Summary: summary, Chapters: audits}
}

func (a *Auditor) detectSensitive(text string) []string {
	hits := make([]string, 0)
	for _, w := range a.words {
		if strings.Contains(text, w) {
			hits = append(hits, w)
		}
	}
	return hits
}

// ReadabilityScore 可读性启发式打分
//
// 基准 80 分：句子过长、分段过少、衔接词叠用各自扣分，截断到 [0,100]。
func ReadabilityScore(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	sentences := splitNonEmpty(sentenceEnd.Split(text, -1))
	totalLen := 0
	for _, s := range sentences {
		totalLen += len([]rune(s))
	}
	avgLen := float64(totalLen) / float64(maxInt(1, len(sentences)))

	paras := splitParagraphs(text)

	score := 80
	if avgLen > 70 {
		score -= 20
	} else if avgLen > 50 {
		score -= 10
	}
	if len(paras) < 3 {
		score -= 10
	}
	if transitionRe.MatchString(text) {
		score -= 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// CoherenceScore 与上一章的连贯性打分
//
// 以双字以上汉字词的交集规模分档。
func CoherenceScore(current, prev string, hasPrev bool) int {
	if strings.TrimSpace(current) == "" {
		return 0
	}
	if !hasPrev {
		return 85
	}

	curTokens := tokenSet(current)
	prevTokens := tokenSet(prev)
	overlap := 0
	for t := range curTokens {
		if prevTokens[t] {
			overlap++
		}
	}

	switch {
	case overlap >= 20:
		return 90
	case overlap >= 10:
		return 82
	case overlap >= 5:
		return 74
	default:
		return 62
	}
}

// CheckHook 检查章节结尾是否留有阅读钩子
func CheckHook(text string) (bool, string) {
	trimmed := strings.TrimSpace(text)
	tail := tailRunes(trimmed, 120)
	if tail == "" {
		return false, "empty_tail"
	}
	if hookKeywordRe.MatchString(tail) {
		return true, "keyword_hook"
	}
	if hookTailRe.MatchString(tail) {
		return true, "punctuation_hook"
	}
	return false, "no_hook_signal"
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range cjkTokenRe.FindAllString(text, -1) {
		set[t] = true
	}
	return set
}

func splitNonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
