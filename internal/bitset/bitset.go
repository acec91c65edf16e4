// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// ビットセット(ステータスワード)から個々のビットを取り出す
package bitset

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// ワード幅 (8 or 16)
type Width int

const (
	Width8  Width = 8
	Width16 Width = 16
)

func (w Width) Valid() bool {
	return w == Width8 || w == Width16
}

// ビット番号の数え方
//
// ワードは少なくともWidth桁の2進数文字列として扱う。値がWidthより多くの
// 有効ビットを持つときは、その分だけ文字列が長くなる。
//
//	MSBFirst: 文字列の左端(最上位)が0番
//	LSBFirst: 文字列を反転したもの、つまり最下位ビットが0番
type Ordering int

const (
	LSBFirst Ordering = iota
	MSBFirst
)

func (o Ordering) String() string {
	switch o {
	case LSBFirst:
		return "lsb"
	case MSBFirst:
		return "msb"
	}
	return fmt.Sprintf("Ordering(%d)", int(o))
}

// "lsb" / "msb" を解釈する
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lsb", "lsb-first", "lsbfirst":
		return LSBFirst, nil
	case "msb", "msb-first", "msbfirst":
		return MSBFirst, nil
	}
	return LSBFirst, fmt.Errorf("ビット順序 %q は不明", s)
}

func (o Ordering) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Ordering) UnmarshalText(text []byte) error {
	v, err := ParseOrdering(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// wordのbit番目の値(0 or 1)を返す
// 範囲外のビット番号は0(そのビットは使われていない)とする
func Decode(word uint64, bit int, width Width, ord Ordering) uint8 {
	n := bits.Len64(word)
	if n < int(width) {
		n = int(width)
	}
	if bit < 0 || bit >= n {
		return 0
	}
	shift := bit
	if ord == MSBFirst {
		shift = n - 1 - bit
	}
	return uint8(word>>uint(shift)) & 1
}

// 16進数文字列を符号なし整数にする
func ParseWord(raw string) (uint64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}

// セル文字列のbit番目の値を返す
func DecodeCell(raw string, bit int, width Width, ord Ordering) (uint8, error) {
	word, err := ParseWord(raw)
	if err != nil {
		return 0, err
	}
	return Decode(word, bit, width, ord), nil
}
