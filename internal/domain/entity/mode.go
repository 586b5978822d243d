// Package entity 定义领域实体
package entity

import "fmt"

// Mode 生成模式
type Mode string

const (
	ModeGenerate    Mode = "generate"
	ModeExpand      Mode = "expand"
	ModeContinue    Mode = "continue"
	ModePad         Mode = "pad"
	ModeInspiration Mode = "inspiration"
	ModeRewrite     Mode = "rewrite"
)

// ParseMode 解析模式字符串，空值回退为 generate
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeGenerate, ModeExpand, ModeContinue, ModePad, ModeInspiration, ModeRewrite:
		return Mode(s), nil
	case "":
		return ModeGenerate, nil
	default:
		return "", fmt.Errorf("unknown generation mode: %q", s)
	}
}

// String 实现 Stringer
func (m Mode) String() string {
	return string(m)
}
