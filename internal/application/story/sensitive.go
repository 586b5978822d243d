package story

import (
	"bufio"
	"os"
	"strings"
)

// sensitiveSuggestions 敏感词到合规替代表述的映射
var sensitiveSuggestions = map[string]string{
	"暴恐":      "极端冲突",
	"极端组织":    "极端团体",
	"毒品交易":    "违禁交易",
	"仇恨言论":    "攻击性言论",
	"未成年人色情":  "未成年人不当内容",
	"血腥虐杀":    "激烈冲突",
	"恐怖袭击":    "重大袭击",
	"教唆自杀":    "诱导伤害",
	"洗钱":      "非法资金流转",
	"非法集资":    "违规募资",
}

const defaultSuggestion = "合规替代表述"

// LoadSensitiveWords 加载敏感词表
//
// 文件缺失视为空表；忽略空行和 # 注释行。
func LoadSensitiveWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

func suggestionFor(word string) string {
	if s, ok := sensitiveSuggestions[word]; ok {
		return s
	}
	return defaultSuggestion
}
