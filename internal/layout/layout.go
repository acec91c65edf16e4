// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// ステータスワード名 -> (サブ信号名 -> ビット位置) の対応表
//
// MVBリスト(スプレッドシート)から作るか、キャッシュファイルから読む。
// 読み込んだ後は変更しないので、複数のゴルーチンから同時に参照してよい。
package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"timonator/internal/bitset"
)

var ErrInvalidLayout = errors.New("ビットセット定義が不正")

// サブ信号
type Bit struct {
	Name  string `yaml:"name"`
	Index int    `yaml:"bit"`
}

// ステータスワード1つ分の定義
type Word struct {
	Width bitset.Width `yaml:"width"`
	Bits  []Bit        `yaml:"bits"`
}

type Table struct {
	// ビット位置をどちらの数え方で書いたか
	Ordering bitset.Ordering `yaml:"ordering"`
	Words    map[string]Word `yaml:"words"`
}

// 信号名(型タグなし)で定義を探す
func (t *Table) Lookup(name string) (Word, bool) {
	if t == nil {
		return Word{}, false
	}
	w, ok := t.Words[name]
	return w, ok
}

// 定義されているステータスワード名(昇順)
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Words))
	for name := range t.Words {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// 不変条件を確かめる
func (t *Table) Validate() error {
	if t.Ordering != bitset.LSBFirst && t.Ordering != bitset.MSBFirst {
		return fmt.Errorf("%w: ordering %v", ErrInvalidLayout, t.Ordering)
	}
	for name, w := range t.Words {
		if !w.Width.Valid() {
			return fmt.Errorf("%w: %s width %d", ErrInvalidLayout, name, w.Width)
		}
		seen := make(map[string]bool, len(w.Bits))
		for _, b := range w.Bits {
			if b.Name == "" {
				return fmt.Errorf("%w: %s bit %d has no name", ErrInvalidLayout, name, b.Index)
			}
			if seen[b.Name] {
				return fmt.Errorf("%w: %s duplicate sub-signal %q", ErrInvalidLayout, name, b.Name)
			}
			seen[b.Name] = true
			if b.Index < 0 || b.Index >= int(w.Width) {
				return fmt.Errorf("%w: %s.%s bit %d out of width %d", ErrInvalidLayout, name, b.Name, b.Index, w.Width)
			}
		}
	}
	return nil
}

// 正規化済みの組から対応表を作る
func Build(triples []Triple, ord bitset.Ordering) (*Table, error) {
	t := &Table{Ordering: ord, Words: make(map[string]Word)}
	for _, tr := range triples {
		if tr.Signal == "" {
			return nil, fmt.Errorf("%w: line %d %s has no sub-signal name", ErrInvalidLayout, tr.Line, tr.Word)
		}
		index, err := parseBit(tr.Bit)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d %s.%s: %v", ErrInvalidLayout, tr.Line, tr.Word, tr.Signal, err)
		}
		w := t.Words[tr.Word]
		if w.Width == 0 {
			w.Width = widthOf(tr.VarType)
		}
		w.Bits = append(w.Bits, Bit{Name: tr.Signal, Index: index})
		t.Words[tr.Word] = w
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// "3" や "3.0" (表計算ソフトが数値にしたもの) を受け付ける
func parseBit(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bit position %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("bit position %q is not integral", s)
	}
	return int(f), nil
}

// "BITSET8" -> 8, "BITSET16" -> 16, それ以外は16
func widthOf(varType string) bitset.Width {
	i := strings.Index(varType, "BITSET")
	if i < 0 {
		return bitset.Width16
	}
	digits := varType[i+len("BITSET"):]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if n, err := strconv.Atoi(digits[:end]); err == nil && bitset.Width(n).Valid() {
		return bitset.Width(n)
	}
	return bitset.Width16
}
