package story

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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
