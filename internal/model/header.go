// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// TiMonログの列見出しと行のモデル
package model

import (
	"strconv"
	"strings"
)

const (
	ColElapsed      = "TIME"                 // 記録開始からの経過時間(s)
	ColPackedTime   = "PLC_TIME(Timedate48)" // UNIX時間(s)
	ColPackedOffset = "PLC_TIME_CV(Enum2)"   // 時差(h)
)

// 列見出し "NAME(TYPE)" を解析した結果
type Header struct {
	Name string // 信号名
	Type string // 型タグ (Bitset8, Boolean, Enum2, ...) 無ければ空
}

// 列見出しを解析する
func ParseHeader(heading string) Header {
	heading = strings.TrimSpace(heading)
	open := strings.LastIndexByte(heading, '(')
	if open <= 0 || !strings.HasSuffix(heading, ")") {
		return Header{Name: heading}
	}
	return Header{
		Name: heading[:open],
		Type: heading[open+1 : len(heading)-1],
	}
}

// 元の列見出し
func (h Header) Key() string {
	if h.Type == "" {
		return h.Name
	}
	return h.Name + "(" + h.Type + ")"
}

func (h Header) IsBitset() bool {
	return h.BitsetWidth() != 0
}

// ビットセットのワード幅(8 or 16)、ビットセットでなければ0
func (h Header) BitsetWidth() int {
	switch h.Type {
	case "Bitset8":
		return 8
	case "Bitset16":
		return 16
	}
	return 0
}

func (h Header) IsBoolean() bool {
	return h.Type == "Boolean"
}

func (h Header) IsEnum() bool {
	return strings.HasPrefix(h.Type, "Enum")
}

// 列挙型の取りうる値の最大値 (Enum2なら3)
func (h Header) EnumMax() int {
	if !h.IsEnum() {
		return 0
	}
	bits, err := strconv.Atoi(strings.TrimPrefix(h.Type, "Enum"))
	if err != nil || bits <= 0 || bits > 31 {
		return 0
	}
	return 1<<bits - 1
}

func (h Header) IsTimedate() bool {
	return strings.HasPrefix(h.Type, "Timedate")
}

// 数値として読むべき列か
func (h Header) IsNumeric() bool {
	if h.Name == ColElapsed && h.Type == "" {
		return true
	}
	if h.IsBoolean() || h.IsEnum() || h.IsTimedate() {
		return true
	}
	for _, prefix := range []string{"Unsigned", "Integer", "Signed", "Real", "Float"} {
		if strings.HasPrefix(h.Type, prefix) {
			return true
		}
	}
	return false
}
