// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package layout

import "strings"

// スプレッドシート(Variablesシート)の1行
type Row struct {
	VarID    string
	VarType  string
	Comment0 string // ビット位置
	Comment1 string // サブ信号名
	Line     int    // シート上の行番号(1始まり)
}

// 正規化済みの(ステータスワード, ワード型, サブ信号, ビット位置)
type Triple struct {
	Word    string
	VarType string
	Signal  string
	Bit     string
	Line    int
}

// 見出し行のComment0に書かれている語
const headerToken = "Bits"

// セル結合で書かれたまばらな行を完全な組にする
//
// VarId, VarTypeの空欄は直前の値で埋める。全て空の行、VarTypeにBITSETを
// 含まない行、見出し行(Comment0 == "Bits")、Comment0とComment1が
// 両方とも空の行は捨てる。
func Normalize(rows []Row) []Triple {
	var (
		word    string
		varType string
		out     []Triple
	)
	for _, r := range rows {
		id := strings.TrimSpace(r.VarID)
		typ := strings.TrimSpace(r.VarType)
		bit := strings.TrimSpace(r.Comment0)
		name := strings.TrimSpace(r.Comment1)

		if id == "" && typ == "" && bit == "" && name == "" {
			continue
		}
		// 前方補完
		if id != "" {
			word = id
		}
		if typ != "" {
			varType = typ
		}

		if word == "" || !strings.Contains(varType, "BITSET") {
			continue
		}
		if bit == headerToken {
			continue
		}
		if bit == "" && name == "" {
			continue
		}
		out = append(out, Triple{
			Word:    word,
			VarType: varType,
			Signal:  name,
			Bit:     bit,
			Line:    r.Line,
		})
	}
	return out
}
