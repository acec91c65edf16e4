// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// 時刻で並んだ信号の表
package signal

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"timonator/internal/model"
)

type Kind int

const (
	Numeric Kind = iota
	Boolean
	Categorical
	StatusWord // ビットセット (整数値)
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Boolean:
		return "boolean"
	case Categorical:
		return "categorical"
	case StatusWord:
		return "status-word"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// 信号1つ分の列
type Column struct {
	Name   string       // 表の中での名前 (元の列見出しかサブ信号名)
	Header model.Header // 元の列見出し、サブ信号では親のもの
	Kind   Kind
	Values []float64 // Numeric, Boolean, StatusWord
	Text   []string  // Categorical
	Parent string    // サブ信号の親ステータスワード
}

func (c *Column) Len() int {
	if c.Kind == Categorical {
		return len(c.Text)
	}
	return len(c.Values)
}

// 数値として扱える列か
func (c *Column) IsNumeric() bool {
	return c.Kind != Categorical
}

var ErrUnknownColumn = errors.New("列がない")

type Table struct {
	Times   []time.Time
	columns []*Column
	index   map[string]int
}

// 行数rowsの空の表
func New(rows int) *Table {
	return &Table{
		Times: make([]time.Time, rows),
		index: make(map[string]int),
	}
}

func (t *Table) Len() int { return len(t.Times) }

// 列を末尾に加える
func (t *Table) Add(c *Column) error {
	if _, ok := t.index[c.Name]; ok {
		return fmt.Errorf("列 %q は既にある", c.Name)
	}
	if c.Len() != t.Len() {
		return fmt.Errorf("列 %q の長さ %d が行数 %d と違う", c.Name, c.Len(), t.Len())
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// 全ての列
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// 列名(追加順)
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ライフワード検索
// "DO1-DO2-ASDO" のようにダッシュで区切ったキーワードのどれかを含む列を
// 表の列順で返す
func (t *Table) Select(lifeword string) []string {
	var words []string
	for _, w := range strings.Split(lifeword, "-") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	var out []string
	for _, c := range t.columns {
		for _, w := range words {
			if strings.Contains(c.Name, w) {
				out = append(out, c.Name)
				break
			}
		}
	}
	return out
}

// 行列にする
// 列0はUNIX時間(s)、列1以降は指定した列の値
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	cols := make([]*Column, len(names))
	for i, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if !c.IsNumeric() {
			return nil, fmt.Errorf("列 %q は数値ではない", name)
		}
		cols[i] = c
	}
	if t.Len() == 0 {
		return nil, errors.New("行がない")
	}

	m := mat.NewDense(t.Len(), len(cols)+1, nil)
	for r, ts := range t.Times {
		m.Set(r, 0, UnixSeconds(ts))
		for i, c := range cols {
			m.Set(r, i+1, c.Values[r])
		}
	}
	return m, nil
}

// 時刻をUNIX時間(s)の浮動小数点数にする
func UnixSeconds(ts time.Time) float64 {
	return float64(ts.Unix()) + float64(ts.Nanosecond())/float64(time.Second)
}

// 列の要約
type Summary struct {
	Count   int // NaNを除く個数
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// 数値列の要約統計量
func (t *Table) Summary(name string) (Summary, error) {
	c, ok := t.Column(name)
	if !ok {
		return Summary{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if !c.IsNumeric() {
		return Summary{}, fmt.Errorf("列 %q は数値ではない", name)
	}
	values := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	s := Summary{Count: len(values), Missing: len(c.Values) - len(values)}
	if len(values) == 0 {
		s.Min, s.Max, s.Mean, s.StdDev = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s, nil
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s, nil
}
