// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// 各行の絶対時刻を求める
//
// PLC_TIME(UNIX時間)とPLC_TIME_CV(時差)の両方が記録されていれば行ごとに
// それを使い、なければファイル名の開始時刻に経過時間(TIME)を足す。
package timeaxis

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"timonator/internal/model"
)

type Mode int

const (
	ModePacked   Mode = iota // PLC_TIME + PLC_TIME_CV
	ModeFilename             // ファイル名の開始時刻 + TIME
)

func (m Mode) String() string {
	if m == ModePacked {
		return "packed"
	}
	return "filename"
}

// 時刻列を作るための入力 (列がなければnil)
type Input struct {
	Elapsed []float64 // TIME(s)
	Packed  []float64 // PLC_TIME(Timedate48) UNIX時間(s)
	Offset  []float64 // PLC_TIME_CV(Enum2) 時差(h)
}

// 時刻が戻った箇所
type Rewind struct {
	Row  int // 戻った行
	From time.Time
	To   time.Time
}

type Axis struct {
	Mode    Mode
	Times   []time.Time
	Rewinds []Rewind
}

// 行ごとの絶対時刻を求める
func Build(in Input, filenameHint string) (*Axis, error) {
	var (
		axis *Axis
		err  error
	)
	switch {
	case in.Packed != nil && in.Offset != nil:
		axis, err = buildPacked(in.Packed, in.Offset)
	case in.Elapsed != nil:
		axis, err = buildFromStart(in.Elapsed, filenameHint)
	default:
		return nil, &model.ColumnError{Column: model.ColElapsed, Err: model.ErrMissingColumn}
	}
	if err != nil {
		return nil, err
	}

	axis.Rewinds = findRewinds(axis.Times)
	if len(axis.Rewinds) != 0 {
		first := axis.Rewinds[0]
		slog.Warn("time axis is not monotonic",
			"mode", axis.Mode,
			"rewinds", len(axis.Rewinds),
			"row", first.Row,
			"from", first.From,
			"to", first.To)
	}
	return axis, nil
}

func buildPacked(packed, offset []float64) (*Axis, error) {
	if len(packed) != len(offset) {
		return nil, fmt.Errorf("%s and %s differ in length", model.ColPackedTime, model.ColPackedOffset)
	}
	times := make([]time.Time, len(packed))
	for r := range packed {
		if math.IsNaN(packed[r]) {
			return nil, &model.CellError{Column: model.ColPackedTime, Row: r}
		}
		if math.IsNaN(offset[r]) {
			return nil, &model.CellError{Column: model.ColPackedOffset, Row: r}
		}
		times[r] = time.Unix(0, 0).UTC().
			Add(seconds(packed[r])).
			Add(time.Duration(offset[r]) * time.Hour)
	}
	return &Axis{Mode: ModePacked, Times: times}, nil
}

func buildFromStart(elapsed []float64, filenameHint string) (*Axis, error) {
	start, err := ParseStart(filenameHint)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, len(elapsed))
	for r, sec := range elapsed {
		if math.IsNaN(sec) {
			return nil, &model.CellError{Column: model.ColElapsed, Row: r}
		}
		times[r] = start.Add(seconds(sec))
	}
	return &Axis{Mode: ModeFilename, Times: times}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// 秒をナノ秒単位に丸める
func seconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}

// ファイル名 "YYYY_MM_DD_HH_MM_SS..." から記録開始時刻を得る
// ディレクトリと拡張子は取り除き、先頭6要素を使う。
// 7番目の要素は "_log" のような接尾辞なら許すが、数字だけなら
// 時刻の一部とみなせないので誤りにする。
// 時刻は車上HMIの現地時刻のまま、UTCとして扱う。
func ParseStart(filenameHint string) (time.Time, error) {
	base := filepath.Base(strings.ReplaceAll(filenameHint, `\`, "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	parts := strings.Split(base, "_")
	if len(parts) < 6 {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrMalformedFilename, base)
	}

	var v [6]int
	for i := range v {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q in %q", model.ErrMalformedFilename, parts[i], base)
		}
		v[i] = n
	}
	if len(parts) > 6 && isDigits(parts[6]) {
		return time.Time{}, fmt.Errorf("%w: unexpected component %q in %q", model.ErrMalformedFilename, parts[6], base)
	}
	year, month, day, hour, minute, second := v[0], v[1], v[2], v[3], v[4], v[5]

	switch {
	case month < 1 || month > 12,
		day < 1 || day > daysIn(year, time.Month(month)),
		hour < 0 || hour > 23,
		minute < 0 || minute > 59,
		second < 0 || second > 59:
		return time.Time{}, fmt.Errorf("%w: %q out of calendar range", model.ErrMalformedFilename, base)
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func findRewinds(times []time.Time) []Rewind {
	var out []Rewind
	for r := 1; r < len(times); r++ {
		if times[r].Before(times[r-1]) {
			out = append(out, Rewind{Row: r, From: times[r-1], To: times[r]})
		}
	}
	return out
}
