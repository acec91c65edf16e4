// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// 1つのログファイルを信号表にするまでの手順
//
//	Unloaded -> Loaded -> Cleaned -> TimeIndexed -> BitsetExpanded -> Ready
//
// 各段階は前の段階が終わっていないと実行できない。どこかで失敗したら
// そのファイルの処理は打ち切り、表は渡さない。
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"timonator/internal/bitset"
	"timonator/internal/layout"
	"timonator/internal/model"
	"timonator/internal/signal"
	"timonator/internal/timeaxis"
	"timonator/internal/timonlog"
)

type State int

const (
	Unloaded State = iota
	Loaded
	Cleaned
	TimeIndexed
	BitsetExpanded
	Ready
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "Unloaded"
	case Loaded:
		return "Loaded"
	case Cleaned:
		return "Cleaned"
	case TimeIndexed:
		return "TimeIndexed"
	case BitsetExpanded:
		return "BitsetExpanded"
	case Ready:
		return "Ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrStage = errors.New("処理の順序が違う")

type Options struct {
	// "reserve" を名前に含むサブ信号も列にする
	KeepReserve bool
}

// ログファイル1つ分の処理状態
type Session struct {
	Path string

	layout *layout.Table
	opts   Options
	state  State
	err    error

	log   *timonlog.Log
	table *signal.Table
	axis  *timeaxis.Axis

	// 処理は続けたが知らせるべきこと (ErrUnresolvableLayout など)
	Warnings []error
}

// layoutはnilでもよい (ビットセットは展開しない)
func New(path string, lt *layout.Table, opts Options) *Session {
	return &Session{Path: path, layout: lt, opts: opts}
}

func (s *Session) State() State { return s.state }

// 失敗していればその理由
func (s *Session) Err() error { return s.err }

// 完成した表 (Readyになるまではnil)
func (s *Session) Table() *signal.Table {
	if s.state != Ready {
		return nil
	}
	return s.table
}

// 時刻列の作り方と巻き戻り
func (s *Session) Axis() *timeaxis.Axis { return s.axis }

// 全ての段階を実行する
func (s *Session) Run() (*signal.Table, error) {
	steps := []func() error{s.Load, s.Clean, s.IndexTime, s.ExpandBitsets, s.finish}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return s.table, nil
}

// 段階の前提を確かめる
func (s *Session) enter(want State) error {
	if s.err != nil {
		return s.err
	}
	if s.state != want {
		return fmt.Errorf("%w: state %s, want %s", ErrStage, s.state, want)
	}
	return nil
}

func (s *Session) fail(err error) error {
	s.err = err
	s.log = nil
	s.table = nil
	slog.Error("pipeline aborted", "path", s.Path, "state", s.state, "err", err)
	return err
}

// ログファイルを読む
func (s *Session) Load() error {
	if err := s.enter(Unloaded); err != nil {
		return err
	}
	l, err := timonlog.Open(s.Path)
	if err != nil {
		return s.fail(err)
	}
	s.log = l
	s.state = Loaded
	slog.Debug("loaded", "path", s.Path, "columns", len(l.Headers), "rows", len(l.Records))
	return nil
}

// セルを型どおりの値にして表を作る
// TIMEを最初に解釈するので、TIMEが壊れていれば他の列には触れない
func (s *Session) Clean() error {
	if err := s.enter(Loaded); err != nil {
		return err
	}
	l := s.log
	if !l.Has(model.ColElapsed) {
		return s.fail(&model.ColumnError{Column: model.ColElapsed, Err: model.ErrMissingColumn})
	}

	headers := make([]model.Header, 0, len(l.Headers))
	for _, h := range l.Headers {
		if h.Key() == model.ColElapsed {
			headers = append([]model.Header{h}, headers...)
		} else {
			headers = append(headers, h)
		}
	}

	byName := make(map[string]*signal.Column, len(headers))
	for _, h := range headers {
		c, err := cleanColumn(h, l.Records)
		if err != nil {
			return s.fail(err)
		}
		byName[h.Key()] = c
	}

	// 元の列順で表にする
	table := signal.New(len(l.Records))
	for _, h := range l.Headers {
		if err := table.Add(byName[h.Key()]); err != nil {
			return s.fail(err)
		}
	}
	s.table = table
	s.log = nil
	s.state = Cleaned
	return nil
}

func cleanColumn(h model.Header, records []model.RawRecord) (*signal.Column, error) {
	key := h.Key()
	cells := make([]string, len(records))
	for r, rec := range records {
		cells[r], _ = rec.Get(key)
	}
	c := &signal.Column{Name: key, Header: h}

	switch {
	case key == model.ColElapsed:
		c.Kind = signal.Numeric
		values, err := parseFloats(key, cells, false)
		if err != nil {
			return nil, err
		}
		c.Values = values

	case h.IsBitset():
		c.Kind = signal.StatusWord
		c.Values = make([]float64, len(cells))
		for r, cell := range cells {
			word, err := bitset.ParseWord(cell)
			if err != nil {
				return nil, &model.CellError{Column: key, Row: r, Value: cell, Err: err}
			}
			c.Values[r] = float64(word)
		}

	case h.IsNumeric():
		c.Kind = signal.Numeric
		if h.IsBoolean() {
			c.Kind = signal.Boolean
		}
		values, err := parseFloats(key, cells, true)
		if err != nil {
			return nil, err
		}
		c.Values = values

	default:
		// 型が分からない列は、全て数値なら数値列にする
		if values, err := parseFloats(key, cells, true); err == nil {
			c.Kind = signal.Numeric
			c.Values = values
		} else {
			c.Kind = signal.Categorical
			c.Text = cells
		}
	}
	return c, nil
}

// allowEmptyなら空のセルはNaNにする
func parseFloats(column string, cells []string, allowEmpty bool) ([]float64, error) {
	values := make([]float64, len(cells))
	for r, cell := range cells {
		if cell == "" && allowEmpty {
			values[r] = math.NaN()
			continue
		}
		v, err := parseNumber(cell)
		if err != nil {
			return nil, &model.CellError{Column: column, Row: r, Value: cell, Err: err}
		}
		values[r] = v
	}
	return values, nil
}

func parseNumber(cell string) (float64, error) {
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v, nil
	}
	switch strings.ToLower(cell) {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	return strconv.ParseFloat(cell, 64)
}

// 各行の絶対時刻を求める
func (s *Session) IndexTime() error {
	if err := s.enter(Cleaned); err != nil {
		return err
	}
	var in timeaxis.Input
	if c, ok := s.table.Column(model.ColElapsed); ok {
		in.Elapsed = c.Values
	}
	if c, ok := s.table.Column(model.ColPackedTime); ok && c.IsNumeric() {
		in.Packed = c.Values
	}
	if c, ok := s.table.Column(model.ColPackedOffset); ok && c.IsNumeric() {
		in.Offset = c.Values
	}
	axis, err := timeaxis.Build(in, s.Path)
	if err != nil {
		return s.fail(err)
	}
	copy(s.table.Times, axis.Times)
	s.axis = axis
	s.state = TimeIndexed
	slog.Debug("time indexed", "path", s.Path, "mode", axis.Mode, "rewinds", len(axis.Rewinds))
	return nil
}

// ステータスワードをサブ信号の列に展開する
func (s *Session) ExpandBitsets() error {
	if err := s.enter(TimeIndexed); err != nil {
		return err
	}
	warnings, err := Expand(s.table, s.layout, s.opts)
	if err != nil {
		return s.fail(err)
	}
	s.Warnings = append(s.Warnings, warnings...)
	s.state = BitsetExpanded
	return nil
}

func (s *Session) finish() error {
	if err := s.enter(BitsetExpanded); err != nil {
		return err
	}
	s.state = Ready
	return nil
}
